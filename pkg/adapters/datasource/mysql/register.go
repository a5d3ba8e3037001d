package mysql

import (
	"github.com/graphshift/graphshift/pkg/adapters/datasource"
)

func init() {
	datasource.Register("mysql", NewConnector)
}
