package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragkb/internal/domain"
	"ragkb/internal/store/memory"
)

type fakeChat struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (f *fakeChat) Chat(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.response, f.err
}

func storeWithCategories(t *testing.T, names ...string) domain.Store {
	t.Helper()
	s := memory.NewStore()
	for _, n := range names {
		require.NoError(t, s.SaveCategory(context.Background(), &domain.Category{Name: n}))
	}
	return s
}

func TestDetectPicksListedCategory(t *testing.T) {
	s := storeWithCategories(t, "Fizika", "Irodalom")
	chat := &fakeChat{response: `{"category": "Fizika"}`}
	d := NewDetector(s, chat, nil)

	got := d.Detect(context.Background(), "Mi a gravitáció?")
	assert.Equal(t, "Fizika", got)
	assert.Contains(t, chat.prompt, "Fizika")
	assert.Contains(t, chat.prompt, "Irodalom")
	assert.Contains(t, chat.prompt, "Mi a gravitáció?")
}

func TestDetectExtractsJSONFromProse(t *testing.T) {
	s := storeWithCategories(t, "Fizika")
	chat := &fakeChat{response: "Sure! Here is the result:\n{\"category\": \"Fizika\"}\nHope that helps."}
	d := NewDetector(s, chat, nil)

	assert.Equal(t, "Fizika", d.Detect(context.Background(), "q"))
}

func TestDetectNoCategoriesSkipsGeneration(t *testing.T) {
	chat := &fakeChat{response: `{"category": "Fizika"}`}
	d := NewDetector(memory.NewStore(), chat, nil)

	got := d.Detect(context.Background(), "q")
	assert.Equal(t, UnknownNoCategories, got)
	assert.Zero(t, chat.calls)
}

func TestDetectCategoryOutsideList(t *testing.T) {
	s := storeWithCategories(t, "Fizika")
	chat := &fakeChat{response: `{"category": "Kémia"}`}
	d := NewDetector(s, chat, nil)

	assert.Equal(t, UnknownInvalidCategory, d.Detect(context.Background(), "q"))
}

func TestDetectNoJSONInResponse(t *testing.T) {
	s := storeWithCategories(t, "Fizika")
	chat := &fakeChat{response: "I think it is physics."}
	d := NewDetector(s, chat, nil)

	assert.Equal(t, UnknownNoJSON, d.Detect(context.Background(), "q"))
}

func TestDetectMalformedJSON(t *testing.T) {
	s := storeWithCategories(t, "Fizika")
	chat := &fakeChat{response: `{"category": }`}
	d := NewDetector(s, chat, nil)

	assert.Equal(t, UnknownNoJSON, d.Detect(context.Background(), "q"))
}

func TestDetectGenerationError(t *testing.T) {
	s := storeWithCategories(t, "Fizika")
	chat := &fakeChat{err: errors.New("upstream down")}
	d := NewDetector(s, chat, nil)

	assert.Equal(t, UnknownDetectionError, d.Detect(context.Background(), "q"))
}
