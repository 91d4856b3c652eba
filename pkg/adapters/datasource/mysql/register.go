package mysql

import (
	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.DialectRegistration{
		Info: datasource.DialectInfo{
			Type:        "mysql",
			DisplayName: "MySQL",
			Description: "MySQL 8+ and MariaDB 10.5+",
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
