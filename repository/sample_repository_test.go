package repository

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"beatsensei/model"
)

func intPtr(v int) *int { return &v }

func TestBuildSearchConditions(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("empty request has no WHERE clause", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{}, now)
		if c.whereSQL() != "" {
			t.Errorf("whereSQL() = %q, want empty", c.whereSQL())
		}
		if len(c.args) != 0 {
			t.Errorf("args = %v, want none", c.args)
		}
	})

	t.Run("every requested tag needs containment", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{Tags: []string{"Dark", " trap "}}, now)
		sql := c.whereSQL()
		// One FIND_IN_SET predicate per tag, AND'd, so {dark,trap,808}
		// matches but {dark} alone does not.
		if got := strings.Count(sql, "FIND_IN_SET(?, s.tags) > 0"); got != 2 {
			t.Errorf("FIND_IN_SET count = %d in %q, want 2", got, sql)
		}
		if !strings.Contains(sql, " AND ") {
			t.Errorf("tag predicates not AND'd: %q", sql)
		}
		if !reflect.DeepEqual(c.args, []interface{}{"dark", "trap"}) {
			t.Errorf("args = %v, want lowered trimmed tags", c.args)
		}
	})

	t.Run("multi-valued genre ORs inside one IN", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{Genres: []string{"Trap", "House"}}, now)
		if got := c.whereSQL(); got != " WHERE LOWER(s.genre) IN (?,?)" {
			t.Errorf("whereSQL() = %q", got)
		}
		if !reflect.DeepEqual(c.args, []interface{}{"trap", "house"}) {
			t.Errorf("args = %v, want lowered genres", c.args)
		}
	})

	t.Run("dimensions combine with AND", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{
			Genres: []string{"trap"},
			Keys:   []string{"Cm"},
		}, now)
		if len(c.clauses) != 2 {
			t.Fatalf("clauses = %v, want 2", c.clauses)
		}
		if !strings.Contains(c.whereSQL(), " AND ") {
			t.Errorf("dimensions not AND'd: %q", c.whereSQL())
		}
	})

	t.Run("bpm bound excludes rows without a bpm", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{BPMMin: intPtr(100), BPMMax: intPtr(150)}, now)
		sql := c.whereSQL()
		if !strings.Contains(sql, "s.bpm IS NOT NULL AND s.bpm >= ?") {
			t.Errorf("missing NULL exclusion on the lower bound: %q", sql)
		}
		if !strings.Contains(sql, "s.bpm IS NOT NULL AND s.bpm <= ?") {
			t.Errorf("missing NULL exclusion on the upper bound: %q", sql)
		}
		if !reflect.DeepEqual(c.args, []interface{}{100, 150}) {
			t.Errorf("args = %v, want [100 150]", c.args)
		}
	})

	t.Run("boolean filters", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{
			HasMetadata:   true,
			PopularOnly:   true,
			RecentlyAdded: true,
		}, now)
		sql := c.whereSQL()
		if !strings.Contains(sql, "m.id IS NOT NULL") {
			t.Errorf("missing metadata predicate: %q", sql)
		}
		if !strings.Contains(sql, "s.download_count >= ?") {
			t.Errorf("missing popularity predicate: %q", sql)
		}
		want := []interface{}{model.PopularDownloadThreshold, now.AddDate(0, 0, -model.RecentUploadWindowDays)}
		if !reflect.DeepEqual(c.args, want) {
			t.Errorf("args = %v, want %v", c.args, want)
		}
	})

	t.Run("text query searches title genre and tags", func(t *testing.T) {
		c := buildSearchConditions(&model.SearchRequest{Query: "dark kick"}, now)
		sql := c.whereSQL()
		for _, col := range []string{"MATCH(s.title)", "MATCH(s.genre)", "MATCH(s.tags)"} {
			if !strings.Contains(sql, col) {
				t.Errorf("missing %s in %q", col, sql)
			}
		}
		if !reflect.DeepEqual(c.args, []interface{}{"dark kick", "dark kick", "dark kick"}) {
			t.Errorf("args = %v, want the query three times", c.args)
		}
	})
}
