package scenario

// Counters are the per-worker totals. They are read only after the worker
// that owns them has finished.
type Counters struct {
	Loaded  int `json:"loaded"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Retries int `json:"retries"`
}

// Add returns the field-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Loaded:  c.Loaded + o.Loaded,
		Created: c.Created + o.Created,
		Updated: c.Updated + o.Updated,
		Retries: c.Retries + o.Retries,
	}
}
