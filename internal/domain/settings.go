package domain

// DefaultRailCount is used when a homepage rail count is unset.
const DefaultRailCount = 4

type SliderImage struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Color       string `json:"color"`
	Image       string `json:"image"`
	MobileImage string `json:"mobileImage,omitempty"`
}

type CategoryImage struct {
	CategoryName string `json:"categoryName"`
	Image        string `json:"image"`
}

type ShippingOption struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Charge float64 `json:"charge"`
}

type SocialMediaLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type TextStyles struct {
	FontSize string `json:"fontSize"`
}

// Settings is the global storefront configuration. It is replaced wholesale
// whenever the server returns a new copy.
type Settings struct {
	OnlinePaymentInfo        string            `json:"onlinePaymentInfo"`
	OnlinePaymentInfoStyles  *TextStyles       `json:"onlinePaymentInfoStyles,omitempty"`
	CODEnabled               bool              `json:"codEnabled"`
	OnlinePaymentEnabled     bool              `json:"onlinePaymentEnabled"`
	OnlinePaymentMethods     []string          `json:"onlinePaymentMethods"`
	SliderImages             []SliderImage     `json:"sliderImages"`
	CategoryImages           []CategoryImage   `json:"categoryImages"`
	Categories               []string          `json:"categories"`
	ShippingOptions          []ShippingOption  `json:"shippingOptions"`
	ProductPagePromoImage    string            `json:"productPagePromoImage"`
	ContactAddress           string            `json:"contactAddress"`
	ContactPhone             string            `json:"contactPhone"`
	ContactEmail             string            `json:"contactEmail"`
	WhatsappNumber           string            `json:"whatsappNumber"`
	ShowWhatsAppButton       bool              `json:"showWhatsAppButton"`
	ShowCityField            bool              `json:"showCityField"`
	SocialMediaLinks         []SocialMediaLink `json:"socialMediaLinks"`
	PrivacyPolicy            string            `json:"privacyPolicy"`
	AdminEmail               string            `json:"adminEmail"`
	FooterDescription        string            `json:"footerDescription"`
	HomepageNewArrivalsCount int               `json:"homepageNewArrivalsCount"`
	HomepageTrendingCount    int               `json:"homepageTrendingCount"`
}

// SettingsPatch carries the fields to change in an update request.
type SettingsPatch map[string]any

func DefaultSettings() Settings {
	return Settings{
		OnlinePaymentInfoStyles:  &TextStyles{FontSize: "0.875rem"},
		CODEnabled:               true,
		OnlinePaymentEnabled:     true,
		OnlinePaymentMethods:     []string{},
		SliderImages:             []SliderImage{},
		CategoryImages:           []CategoryImage{},
		Categories:               []string{},
		ShippingOptions:          []ShippingOption{},
		SocialMediaLinks:         []SocialMediaLink{},
		ShowCityField:            true,
		HomepageNewArrivalsCount: DefaultRailCount,
		HomepageTrendingCount:    DefaultRailCount,
	}
}

// CategoryImageFor returns the image configured for a category.
func (s Settings) CategoryImageFor(category string) (string, bool) {
	for _, ci := range s.CategoryImages {
		if ci.CategoryName == category {
			return ci.Image, true
		}
	}
	return "", false
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	if s.OnlinePaymentInfoStyles != nil {
		styles := *s.OnlinePaymentInfoStyles
		out.OnlinePaymentInfoStyles = &styles
	}
	out.OnlinePaymentMethods = cloneSlice(s.OnlinePaymentMethods)
	out.SliderImages = cloneSlice(s.SliderImages)
	out.CategoryImages = cloneSlice(s.CategoryImages)
	out.Categories = cloneSlice(s.Categories)
	out.ShippingOptions = cloneSlice(s.ShippingOptions)
	out.SocialMediaLinks = cloneSlice(s.SocialMediaLinks)
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
