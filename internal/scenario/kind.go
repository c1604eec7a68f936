package scenario

import (
	"fmt"
	"strings"
)

// Kind selects the traversal a worker runs.
type Kind int

const (
	Build Kind = iota
	Write
	Crawl
	Read
	CrawlAndUpdate
	ContentiousUpdate
)

var titles = map[Kind]string{
	Build:             "Build",
	Write:             "Writes",
	Crawl:             "Crawl",
	Read:              "Read",
	CrawlAndUpdate:    "Crawl and update",
	ContentiousUpdate: "Contentious update",
}

// Kinds returns every scenario kind in declaration order.
func Kinds() []Kind {
	return []Kind{Build, Write, Crawl, Read, CrawlAndUpdate, ContentiousUpdate}
}

// Title is the heading used in reports.
func (k Kind) Title() string {
	if title, ok := titles[k]; ok {
		return title
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Slug is the lowercase, dash separated title. It keys results files.
func (k Kind) Slug() string {
	return strings.ReplaceAll(strings.ToLower(k.Title()), " ", "-")
}

func (k Kind) String() string {
	return k.Slug()
}

// Flat reports whether the kind works on a fixed URL instead of walking the
// tree. Flat kinds stop at loaded >= number; recursive ones at loaded > number.
func (k Kind) Flat() bool {
	return k == Write || k == Read || k == ContentiousUpdate
}

// Parse resolves a slug such as "crawl-and-update" to its Kind.
func Parse(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if k.Slug() == needle {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown scenario %q", s)
}
