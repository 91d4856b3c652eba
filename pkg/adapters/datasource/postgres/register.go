package postgres

import (
	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.DialectRegistration{
		Info: datasource.DialectInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL 12+, Aurora PostgreSQL, Supabase",
			DefaultPort: DefaultPort(),
		},
		Factory: func(config map[string]any) (datasource.Dialect, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewDialect(cfg), nil
		},
	})
}
