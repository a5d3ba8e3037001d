package postgres

import (
	"github.com/graphshift/graphshift/pkg/adapters/datasource"
)

func init() {
	datasource.Register("postgres", NewConnector)
}
