package core

// Alias maps a short name to a directory.
type Alias struct {
	Name string
	Dir  string
}

// AliasTable holds directory aliases in the order they were first saved.
type AliasTable struct {
	entries []Alias
}

// Set stores dir under name. If the name is already present its directory
// is replaced in place and true is returned.
func (t *AliasTable) Set(name, dir string) (replaced bool) {
	for i := range t.entries {
		if t.entries[i].Name == name {
			t.entries[i].Dir = dir
			return true
		}
	}
	t.entries = append(t.entries, Alias{Name: name, Dir: dir})
	return false
}

// Lookup returns the directory stored under name.
func (t *AliasTable) Lookup(name string) (string, bool) {
	for _, entry := range t.entries {
		if entry.Name == name {
			return entry.Dir, true
		}
	}
	return "", false
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// List returns a copy of the aliases in insertion order.
func (t *AliasTable) List() []Alias {
	return append([]Alias(nil), t.entries...)
}

// Score is the running tally of rock-paper-scissors games.
type Score struct {
	Wins   int
	Losses int
}

// State is the interpreter state that outlives a single command line. It's
// only touched by the interpreter goroutine, except for Jobs which
// synchronizes itself.
type State struct {
	Aliases AliasTable
	Score   Score
	Jobs    *JobTable
}

// NewState creates empty interpreter state.
func NewState() *State {
	return &State{Jobs: NewJobTable()}
}
