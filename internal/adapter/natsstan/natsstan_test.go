package natsstan

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/example/storefront-core/internal/domain"
	stan "github.com/nats-io/stan.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	stan.Conn
	subject string
	data    [][]byte
	err     error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subject = subject
	c.data = append(c.data, data)
	return nil
}

func TestClientID(t *testing.T) {
	assert.Equal(t, "fixed", clientID("fixed", "storefront"))

	a, b := clientID("", "storefront"), clientID("", "storefront")
	assert.True(t, strings.HasPrefix(a, "storefront-"))
	assert.NotEqual(t, a, b)
}

func TestPublisher(t *testing.T) {
	conn := &fakeConn{}
	p := &Publisher{conn: conn, subject: "orders"}

	require.NoError(t, p.Publish(domain.Order{ID: "o1", Status: domain.StatusPending}))
	assert.Equal(t, "orders", conn.subject)
	require.Len(t, conn.data, 1)
	var got domain.Order
	require.NoError(t, json.Unmarshal(conn.data[0], &got))
	assert.Equal(t, "o1", got.ID)

	assert.ErrorIs(t, p.Publish(domain.Order{}), domain.ErrValidation)

	conn.err = errors.New("nats: connection closed")
	assert.ErrorContains(t, p.Publish(domain.Order{ID: "o2"}), "publish order o2")
}
