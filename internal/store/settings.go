package store

// Settings controls how a Store loads and what it reports. A Store holds
// one Settings value at a time; SetSettings replaces it wholesale.
type Settings struct {
	// AutoLoadOnInit reloads during New.
	AutoLoadOnInit bool `json:"auto_load" yaml:"auto_load"`
	// IncludeDefaults backfills options the live tree lacks from the
	// default tree, whose keyspace then becomes authoritative.
	IncludeDefaults bool `json:"include_defaults" yaml:"include_defaults"`
	// ReportMissingOnReload emits a missing-option report on every reload.
	ReportMissingOnReload bool `json:"report_missing" yaml:"report_missing"`
	// ReportRedundantOptions adds a redundant-option report wherever a
	// missing-option report is emitted.
	ReportRedundantOptions bool `json:"report_redundant" yaml:"report_redundant"`
	// ReportNewConfigCreation emits a notice when the live source is
	// created or overwritten from the default.
	ReportNewConfigCreation bool `json:"report_new_config" yaml:"report_new_config"`
	// DebugLogging adds failure detail to reports.
	DebugLogging bool `json:"debug" yaml:"debug"`
	// UseColoring is passed to sinks unchanged.
	UseColoring bool `json:"color" yaml:"color"`
}

// DefaultSettings returns the settings a Store uses unless told otherwise.
func DefaultSettings() Settings {
	return Settings{
		AutoLoadOnInit:          true,
		IncludeDefaults:         true,
		ReportMissingOnReload:   true,
		ReportRedundantOptions:  false,
		ReportNewConfigCreation: true,
		DebugLogging:            false,
		UseColoring:             true,
	}
}
