package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"toubkal-lib/internal/logging"
	"toubkal-lib/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
	return NewStore(kv, WithIDGenerator(gen), WithLogger(logging.Discard())), kv
}

func calcForm() BookletForm {
	return BookletForm{Title: "Calc I", Subject: "Math", Faculty: "Engineering", Year: "1st Year", Pages: "42"}
}

func TestLoad_DefaultsWhenAbsent(t *testing.T) {
	s, _ := newStore(t)
	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Science", "Arts", "Business"}, doc.Faculties)
	assert.Equal(t, []string{"1st Year", "2nd Year", "3rd Year"}, doc.Years)
	assert.Empty(t, doc.Booklets)
	assert.NotNil(t, doc.Booklets)
}

func TestLoad_CorruptDocumentDegradesToDefaults(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, DocumentKey, "{not json"))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), doc)
}

func TestLoad_MissingListsFallBackIndividually(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, DocumentKey, `{"faculties":[],"booklets":[{"id":"x","title":"T","subject":"S","faculty":"F","year":"Y","pages":3}]}`))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Faculties)
	assert.Equal(t, defaultYears, doc.Years)
	require.Len(t, doc.Booklets, 1)
	assert.Equal(t, 3, doc.Booklets[0].Pages)
}

func TestUpsertBooklet_RoundTripAndReplaceInPlace(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, first, err := s.UpsertBooklet(ctx, BookletForm{Title: "Intro", Subject: "Bio", Faculty: "Science", Year: "2nd Year", Pages: "10"})
	require.NoError(t, err)
	_, calc, err := s.UpsertBooklet(ctx, calcForm())
	require.NoError(t, err)
	_, _, err = s.UpsertBooklet(ctx, BookletForm{Title: "Poetry", Subject: "Lit", Faculty: "Arts", Year: "3rd Year", Pages: "5"})
	require.NoError(t, err)

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Booklets, 3)
	assert.Equal(t, first.ID, doc.Booklets[0].ID)
	assert.Equal(t, 42, doc.Booklets[1].Pages)
	assert.Equal(t, calc.ID, doc.Booklets[1].ID)
	assert.NotEmpty(t, calc.ID)

	edit := calcForm()
	edit.ID = calc.ID
	edit.Title = "Calculus I"
	doc, updated, err := s.UpsertBooklet(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, calc.ID, updated.ID)
	require.Len(t, doc.Booklets, 3)
	assert.Equal(t, "Calculus I", doc.Booklets[1].Title)
	assert.Equal(t, calc.ID, doc.Booklets[1].ID)

	reloaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, reloaded)
}

func TestUpsertBooklet_UnknownIDAppends(t *testing.T) {
	s, _ := newStore(t)
	form := calcForm()
	form.ID = "ghost"

	doc, b, err := s.UpsertBooklet(context.Background(), form)
	require.NoError(t, err)
	assert.NotEqual(t, "ghost", b.ID)
	require.Len(t, doc.Booklets, 1)
}

func TestUpsertBooklet_ValidationLeavesDocumentAlone(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()

	cases := map[string]func(f *BookletForm){
		"title":          func(f *BookletForm) { f.Title = "" },
		"subject":        func(f *BookletForm) { f.Subject = "" },
		"faculty":        func(f *BookletForm) { f.Faculty = "" },
		"year":           func(f *BookletForm) { f.Year = "" },
		"pages empty":    func(f *BookletForm) { f.Pages = "" },
		"pages text":     func(f *BookletForm) { f.Pages = "forty" },
		"pages zero":     func(f *BookletForm) { f.Pages = "0" },
		"pages negative": func(f *BookletForm) { f.Pages = "-3" },
	}
	for name, mutate := range cases {
		form := calcForm()
		mutate(&form)
		_, _, err := s.UpsertBooklet(ctx, form)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), name)
		assert.NotEmpty(t, vErr.Fields, name)
	}
	assert.Equal(t, 0, kv.Len())
}

func TestDeleteBooklet(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()
	_, b, err := s.UpsertBooklet(ctx, calcForm())
	require.NoError(t, err)

	before, _, _ := kv.Get(ctx, DocumentKey)
	doc, err := s.DeleteBooklet(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Len(t, doc.Booklets, 1)
	after, _, _ := kv.Get(ctx, DocumentKey)
	assert.Equal(t, before, after)

	doc, err = s.DeleteBooklet(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, doc.Booklets)

	_, found, err := s.Booklet(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAddTaxonomyEntry(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	doc, err := s.AddTaxonomyEntry(ctx, Faculty, "Medicine")
	require.NoError(t, err)
	doc, err = s.AddTaxonomyEntry(ctx, Faculty, "Engineering")
	require.NoError(t, err)
	doc, err = s.AddTaxonomyEntry(ctx, Faculty, "  Medicine  ")
	require.NoError(t, err)
	doc, err = s.AddTaxonomyEntry(ctx, Faculty, "   ")
	require.NoError(t, err)
	doc, err = s.AddTaxonomyEntry(ctx, Faculty, "engineering")
	require.NoError(t, err)

	assert.Equal(t, []string{"Engineering", "Science", "Arts", "Business", "Medicine", "engineering"}, doc.Faculties)

	doc, err = s.AddTaxonomyEntry(ctx, Year, " 4th Year ")
	require.NoError(t, err)
	assert.Equal(t, []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}, doc.Years)
}

func TestRemoveTaxonomyEntry_DoesNotCascade(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, b, err := s.UpsertBooklet(ctx, calcForm())
	require.NoError(t, err)

	doc, err := s.RemoveTaxonomyEntry(ctx, Faculty, "Engineering")
	require.NoError(t, err)
	assert.Equal(t, []string{"Science", "Arts", "Business"}, doc.Faculties)
	require.Len(t, doc.Booklets, 1)
	assert.Equal(t, "Engineering", doc.Booklets[0].Faculty)
	assert.Equal(t, b.ID, doc.Booklets[0].ID)

	doc, err = s.RemoveTaxonomyEntry(ctx, Year, "9th Year")
	require.NoError(t, err)
	assert.Equal(t, defaultYears, doc.Years)
}

func TestReplace(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	want := Settings{Faculties: []string{"Law"}, Years: []string{}, Booklets: []Booklet{{ID: "1", Title: "T", Subject: "S", Faculty: "Law", Year: "Y", Pages: 1}}}

	require.NoError(t, s.Replace(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"faculty": Faculty, "Faculties": Faculty, "years": Year, " year ": Year} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("subjects")
	assert.Error(t, err)
}
