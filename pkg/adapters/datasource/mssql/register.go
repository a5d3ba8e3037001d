package mssql

import (
	"github.com/graphshift/graphshift/pkg/adapters/datasource"
)

func init() {
	datasource.Register("sqlserver", NewConnector)
}
