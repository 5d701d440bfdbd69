// Package sqlutil holds small query helpers shared by the repos.
package sqlutil

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns free text into a LIKE pattern matching it anywhere,
// with wildcards in the input escaped.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// ILike is a portable case-insensitive substring condition on col.
func ILike(col string) string {
	return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
}

type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to >= 1 and the size to [1, max], using def when unset.
func (p Page) Normalize(def, max int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = def
	}
	if max > 0 && p.Size > max {
		p.Size = max
	}
	return p
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) Apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Size)
}

// TotalPages is ceil(total/size), 0 for an empty result.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
