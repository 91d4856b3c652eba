package transform

import (
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// Logo types stored in partner_logos.logo_type.
const (
	LogoTypePrimary   = "primary"
	LogoTypeSecondary = "secondary"
)

var (
	museumLogoColumns      = []string{"logo", "logo1", "logo2", "logo3"}
	institutionLogoColumns = []string{"logo", "logo1", "logo2"}
)

// LogoRecord is one partner logo.
type LogoRecord struct {
	PartnerKey   string
	Path         string
	LogoType     string
	DisplayOrder int
}

// TransformLogos reads the logo columns of a museums or institutions row.
func TransformLogos(r legacydb.Row, partnerType string) []LogoRecord {
	columns := institutionLogoColumns
	if partnerType == models.PartnerTypeMuseum {
		columns = museumLogoColumns
	}
	return logos(r, PartnerKeyOf(r, partnerType), columns)
}

// TransformShPartnerLogos reads the logo columns of a sh_partners row.
func TransformShPartnerLogos(r legacydb.Row) []LogoRecord {
	return logos(r, ShPartnerKey(r.Trimmed("partners_id")), museumLogoColumns)
}

func logos(r legacydb.Row, partnerKey string, columns []string) []LogoRecord {
	var out []LogoRecord
	seen := make(map[string]bool)
	for _, col := range columns {
		path := r.Trimmed(col)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		logoType := LogoTypeSecondary
		if len(out) == 0 {
			logoType = LogoTypePrimary
		}
		out = append(out, LogoRecord{
			PartnerKey:   partnerKey,
			Path:         path,
			LogoType:     logoType,
			DisplayOrder: len(out) + 1,
		})
	}
	return out
}
