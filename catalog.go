package main

// RuleCatalog maps fully qualified table names, then column names, to
// compiled replacement rules. It is built once at startup and is
// read-only for the life of the process
type RuleCatalog map[string]map[string]Ruler

// NewRuleCatalog compiles every template in the settings through
// parseTemplate. Compilation never aborts: malformed templates have
// already degraded to empty literals by the time they land here
func NewRuleCatalog(settings Settings) RuleCatalog {

	catalog := RuleCatalog{}

	for schemaName, tables := range settings.Rules {
		for tableName, columns := range tables {

			qualified := schemaName + "." + tableName

			for columnName, rawTemplate := range columns {
				if _, ok := catalog[qualified]; !ok {
					catalog[qualified] = map[string]Ruler{}
				}
				catalog[qualified][columnName] = parseTemplate(rawTemplate)
				log.Infow("loaded rule",
					"table", qualified,
					"column", columnName,
					"template", rawTemplate,
				)
			}
		}
	}

	return catalog
}
