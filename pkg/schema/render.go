package schema

import (
	"fmt"
	"strings"
)

// ignoredColumns are audit columns present on every table of the source
// database; they add prompt noise without answering any question.
var ignoredColumns = map[string]bool{
	"insertedby":       true,
	"inserteddatetime": true,
	"updatedby":        true,
	"updateddatetime":  true,
}

// ignoredTables are framework bookkeeping tables.
var ignoredTables = map[string]bool{
	"__EFMigrationsHistory": true,
	"schema_migrations":     true,
}

// Render formats tables as the double-quoted plain-text summary embedded in
// the generation prompt. Identifiers are quoted exactly as the model must
// quote them in SQL.
func Render(tables []Table) string {
	var b strings.Builder

	for _, t := range tables {
		if ignoredTables[t.Name] {
			continue
		}

		fmt.Fprintf(&b, "Table: %q\n", t.Name)
		for _, c := range t.Columns {
			if ignoredColumns[strings.ToLower(c.Name)] {
				continue
			}
			fmt.Fprintf(&b, "  - %q (%s)\n", c.Name, c.DataType)
		}
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(&b, "  FK: %q -> %q.%q\n", fk.Column, fk.TargetTable, fk.TargetColumn)
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}
