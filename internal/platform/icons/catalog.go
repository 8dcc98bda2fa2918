package icons

import "strings"

// ID identifies one icon used by page templates.
type ID string

const (
	IDBrand       ID = "brand"
	IDGift        ID = "gift"
	IDStar        ID = "star"
	IDSuccess     ID = "success"
	IDLoading     ID = "loading"
	IDArrowRight  ID = "arrow-right"
	IDSparkles    ID = "sparkles"
	IDCalendar    ID = "calendar"
	IDShieldCheck ID = "shield-check"
	IDAlert       ID = "alert"
	IDInstagram   ID = "instagram"
	IDFacebook    ID = "facebook"
	IDTwitter     ID = "twitter"
)

// Definition describes a core icon entry.
type Definition struct {
	ID          ID
	Name        string
	Description string
}

var catalog = []Definition{
	{ID: IDBrand, Name: "Brand", Description: "Brand mark next to the wordmark."},
	{ID: IDGift, Name: "Gift", Description: "Coupon call to action."},
	{ID: IDStar, Name: "Star", Description: "Premium access benefit."},
	{ID: IDSuccess, Name: "Success", Description: "Issued coupon confirmation."},
	{ID: IDLoading, Name: "Loading", Description: "Pending issuance spinner."},
	{ID: IDArrowRight, Name: "Arrow Right", Description: "Forward affordance on buttons."},
	{ID: IDSparkles, Name: "Sparkles", Description: "Event badge in the hero."},
	{ID: IDCalendar, Name: "Calendar", Description: "Limited duration benefit."},
	{ID: IDShieldCheck, Name: "Shield Check", Description: "Secure rewards benefit."},
	{ID: IDAlert, Name: "Alert", Description: "Failed issuance notice."},
	{ID: IDInstagram, Name: "Instagram", Description: "Social link."},
	{ID: IDFacebook, Name: "Facebook", Description: "Social link."},
	{ID: IDTwitter, Name: "Twitter", Description: "Social link."},
}

// Catalog returns a copy of every icon definition.
func Catalog() []Definition {
	result := make([]Definition, len(catalog))
	copy(result, catalog)
	return result
}

// CatalogMarkdown renders the icon catalog as markdown.
func CatalogMarkdown() string {
	var builder strings.Builder
	builder.WriteString("# Icon Catalog\n\n")
	builder.WriteString("| Icon ID | Lucide | Name | Description |\n")
	builder.WriteString("| --- | --- | --- | --- |\n")
	for _, def := range catalog {
		builder.WriteString("| ")
		builder.WriteString(string(def.ID))
		builder.WriteString(" | ")
		builder.WriteString(LucideNameOrDefault(def.ID))
		builder.WriteString(" | ")
		builder.WriteString(def.Name)
		builder.WriteString(" | ")
		builder.WriteString(def.Description)
		builder.WriteString(" |\n")
	}
	return builder.String()
}
