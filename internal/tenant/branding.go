package tenant

import (
	"github.com/lms-platform/lms-backend/internal/db/models"
)

// Branding is the white-label presentation data exposed to the view layer.
type Branding struct {
	OrganizationID       *int64 `json:"organization_id"`
	Slug                 string `json:"slug,omitempty"`
	Name                 string `json:"name"`
	Logo                 string `json:"logo,omitempty"`
	Favicon              string `json:"favicon,omitempty"`
	PrimaryColor         string `json:"primary_color,omitempty"`
	SecondaryColor       string `json:"secondary_color,omitempty"`
	AccentColor          string `json:"accent_color,omitempty"`
	CustomCSS            string `json:"custom_css,omitempty"`
	LoginBackgroundImage string `json:"login_background_image,omitempty"`
	FooterText           string `json:"footer_text,omitempty"`
	Whitelabel           bool   `json:"whitelabel"`
}

// BrandingFor returns the branding of org with empty fields taken from defaults.
// A nil org yields defaults unchanged.
func BrandingFor(org *models.Organization, defaults Branding) Branding {
	b := defaults
	b.OrganizationID = nil
	if org == nil {
		return b
	}

	id := org.ID
	b.OrganizationID = &id
	b.Slug = org.Slug
	b.Whitelabel = org.WhitelabelEnabled
	b.Name = org.DisplayName()

	pick(&b.Logo, org.OrganizationLogo)
	pick(&b.Favicon, org.OrganizationFavicon)
	pick(&b.PrimaryColor, org.PrimaryColor)
	pick(&b.SecondaryColor, org.SecondaryColor)
	pick(&b.AccentColor, org.AccentColor)
	pick(&b.CustomCSS, org.CustomCSS)
	pick(&b.LoginBackgroundImage, org.LoginBackgroundImage)
	pick(&b.FooterText, org.FooterText)
	return b
}

func pick(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

// ViewSink is the write-only shared context of the view layer.
type ViewSink interface {
	Share(key string, value any)
}

// Publish pushes the tenant and its branding into sink.
func Publish(sink ViewSink, tc Context, defaults Branding) {
	sink.Share("branding", BrandingFor(tc.Organization, defaults))
	sink.Share("organization", tc.Organization)
	sink.Share("tenant_source", string(tc.Source))
}
