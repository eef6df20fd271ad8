package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/example/storefront-core/internal/domain"
)

// Login exchanges credentials for an admin token and loads admin data.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Warn("login failed", "err", err)
		s.Notify("Incorrect email or password.", domain.SeverityError)
		return false
	}
	s.update(func() bool {
		s.token = token
		s.loginRequired = false
		s.notes.Notify("Login successful!", domain.SeveritySuccess)
		return false
	})
	if err := s.RefreshAdminData(ctx); err != nil {
		s.log.Warn("admin data not loaded", "err", err)
	}
	return true
}

// Logout drops the token and the admin collections.
func (s *Store) Logout() {
	s.update(func() bool {
		s.token = ""
		s.loginRequired = false
		s.orders = nil
		s.messages = nil
		s.stats = nil
		s.adminProducts = nil
		s.pagination = Pagination{}
		s.tracker.Recount(nil)
		s.notes.Notify("You have been logged out.", domain.SeveritySuccess)
		return false
	})
}

// UpdateSettings sends patch and replaces settings with the server's copy.
func (s *Store) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Failed to update settings.")
	}
	updated, err := s.api.UpdateSettings(ctx, patch, token)
	if err != nil {
		return s.failNotice(err, "Error: "+domain.UserMessage(err, "Failed to update settings."))
	}
	s.update(func() bool {
		s.settings = updated
		s.notes.Notify("Settings updated successfully!", domain.SeveritySuccess)
		return true
	})
	return nil
}

// AddContactMessage submits a visitor message. It needs no session.
func (s *Store) AddContactMessage(ctx context.Context, m domain.ContactMessage) error {
	if err := s.api.CreateMessage(ctx, m); err != nil {
		return s.fail(err, "Could not send your message.")
	}
	return nil
}

func (s *Store) MarkMessageAsRead(ctx context.Context, id string, isRead bool) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not update message.")
	}
	updated, err := s.api.MarkMessageRead(ctx, id, isRead, token)
	if err != nil {
		return s.fail(err, "Could not update message.")
	}
	state := "unread"
	if isRead {
		state = "read"
	}
	s.update(func() bool {
		for i := range s.messages {
			if s.messages[i].ID == updated.ID {
				s.messages[i] = updated
			}
		}
		s.notes.Notify(fmt.Sprintf("Message marked as %s.", state), domain.SeveritySuccess)
		return false
	})
	return nil
}

func (s *Store) DeleteContactMessage(ctx context.Context, id string) error {
	token, err := s.adminToken()
	if err != nil {
		return s.fail(err, "Could not delete message.")
	}
	if err := s.api.DeleteMessage(ctx, id, token); err != nil {
		return s.fail(err, "Could not delete message.")
	}
	s.update(func() bool {
		s.messages = slices.DeleteFunc(slices.Clone(s.messages), func(m domain.ContactMessage) bool { return m.ID == id })
		s.notes.Notify("Message has been deleted.", domain.SeveritySuccess)
		return false
	})
	return nil
}
