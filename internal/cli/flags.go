package cli

import "ktp/internal/config"

// Flags holds command-line flags
type Flags struct {
	Verbose    bool
	Workspace  string
	NameFilter string
	TestCases  bool
	Exclude    []string
	Extractor  string
	NoWatch    bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Verbose:    f.Verbose,
		Workspace:  f.Workspace,
		NameFilter: f.NameFilter,
		TestCases:  f.TestCases,
		Exclude:    append([]string(nil), f.Exclude...),
		Extractor:  f.Extractor,
		NoWatch:    f.NoWatch,
	}
}
