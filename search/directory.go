//go:generate go run go.uber.org/mock/mockgen -source=directory.go -destination=../mocks/mock_directory.go -package=mocks
package search

import (
	"alumni-net/domain"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/samber/lo"
)

const (
	fieldName     = "name"
	fieldHeadline = "headline"
	fieldBio      = "bio"
	fieldSkill    = "skill"
	fieldCompany  = "company"
	fieldRole     = "role"
)

var textFields = []string{fieldName, fieldHeadline, fieldBio, fieldSkill, fieldCompany}

type IDirectory interface {
	Index(profile domain.Profile) error
	Search(ctx context.Context, query string, limit int) ([]domain.UserID, error)
	Close() error
}

// Directory is the full-text profile index. It only holds searchable text,
// the profiles themselves stay in badger.
type Directory struct {
	writer       *bluge.Writer
	log          *slog.Logger
	defaultLimit int
}

// OpenDirectory opens the index stored at path, or an in-memory one when
// path is empty.
func OpenDirectory(path string, defaultLimit int, log *slog.Logger) (*Directory, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &Directory{writer: writer, log: log, defaultLimit: defaultLimit}, nil
}

func (d *Directory) Close() error {
	return d.writer.Close()
}

// Index inserts or replaces the document of one profile.
func (d *Directory) Index(profile domain.Profile) error {
	doc := bluge.NewDocument(string(profile.ID))
	doc.AddField(bluge.NewTextField(fieldName, profile.Name))
	doc.AddField(bluge.NewTextField(fieldHeadline, profile.Headline))
	doc.AddField(bluge.NewTextField(fieldBio, profile.Bio))
	for _, skill := range profile.Skills {
		doc.AddField(bluge.NewTextField(fieldSkill, skill))
	}
	for _, company := range companies(profile) {
		doc.AddField(bluge.NewTextField(fieldCompany, company))
	}
	doc.AddField(bluge.NewKeywordField(fieldRole, string(profile.Role())))

	if err := d.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index profile %s: %w", profile.ID, err)
	}
	return nil
}

// Search matches query against every text field and returns the best
// matching identities first. An empty query matches nothing.
func (d *Directory) Search(ctx context.Context, query string, limit int) ([]domain.UserID, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.UserID{}, nil
	}
	if limit <= 0 {
		limit = d.defaultLimit
	}

	q := bluge.NewBooleanQuery().SetMinShould(1)
	for _, field := range textFields {
		q.AddShould(bluge.NewMatchQuery(query).SetField(field))
		// Prefix on the name so "ali" finds "Alice" while typing.
		if field == fieldName {
			q.AddShould(bluge.NewPrefixQuery(strings.ToLower(query)).SetField(field))
		}
	}

	reader, err := d.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open bluge reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			d.log.Warn("Failed to close bluge reader", "error", err)
		}
	}()

	it, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	ids := []domain.UserID{}
	match, err := it.Next()
	for err == nil && match != nil {
		if visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, domain.UserID(value))
				return false
			}
			return true
		}); visitErr != nil {
			return nil, visitErr
		}
		match, err = it.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// companies gathers the current company of an alumni plus every past
// employer listed in the experience section.
func companies(profile domain.Profile) []string {
	var names []string
	if details, ok := profile.Details.(domain.AlumniDetails); ok {
		names = append(names, details.Company)
	}
	names = append(names, lo.Map(profile.Experience, func(e domain.Experience, _ int) string {
		return e.Company
	})...)
	return lo.Uniq(lo.Compact(names))
}
