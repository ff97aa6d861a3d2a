// Package fixture provides deterministic demo records and a minimal list
// endpoint for tests.
package fixture

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/runger/datagrid/internal/table"
)

// User is the demo record shape.
type User struct {
	ID        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Sex       string    `json:"sex"`
	Email     string    `json:"email"`
	Music     string    `json:"music"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	firstNames = []string{"Alice", "Bob", "Carmen", "Dmitri", "Anna", "Eve", "Frank", "Grace", "Hiro", "Ivan"}
	lastNames  = []string{"Smith", "Jones", "Garcia", "Ivanova", "Brown", "Nakamura", "Okafor", "Schultz"}
	genres     = []string{"Jazz", "Rock", "Country", "Hip Hop", "Classical", "Blues", "Reggae"}
	sexes      = []string{"female", "male"}

	epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Users returns n users. User i (0-based) has id i+1 and fields chosen by
// index, so the same n always yields the same data.
func Users(n int) []User {
	users := make([]User, n)
	for i := range users {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i*3)%len(lastNames)]
		created := epoch.Add(time.Duration(i) * 24 * time.Hour)
		users[i] = User{
			ID:        i + 1,
			FirstName: first,
			LastName:  last,
			Sex:       sexes[i%len(sexes)],
			Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Music:     genres[i%len(genres)],
			CreatedAt: created,
			UpdatedAt: created.Add(90 * 24 * time.Hour),
		}
	}
	return users
}

// Seed returns n users as records.
func Seed(n int) []table.Record {
	users := Users(n)
	records := make([]table.Record, len(users))
	for i, u := range users {
		raw, err := json.Marshal(u)
		if err != nil {
			panic(err)
		}
		records[i] = table.NewRecord(raw)
	}
	return records
}

// Objects wraps arbitrary JSON objects as records.
func Objects(objs ...string) []table.Record {
	records := make([]table.Record, len(objs))
	for i, o := range objs {
		records[i] = table.NewRecord([]byte(o))
	}
	return records
}
