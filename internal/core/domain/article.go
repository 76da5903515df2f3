package domain

// Article is a piece of biomedical evidence fetched fresh per verification
// run. Articles are never persisted.
type Article struct {
	ID       string
	Title    string
	Abstract string
	Authors  []string
	URL      string
	Source   string
}

// Evidence sources.
const (
	SourceNCBI = "ncbi"
)
