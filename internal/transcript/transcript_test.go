package transcript

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"AskChat/internal/answer"
	"AskChat/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	sess := session.New("http://localhost:8000")
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "transcript.db"), sess, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	exchanges := []session.Exchange{
		{Question: "How can I improve my productivity?", Answer: "Try time blocking.", MatchedQuestion: "How can I improve my productivity?", Source: answer.SourceKnowledgeBase},
		{Question: "hello", Answer: "Hello!", Source: answer.SourceOpenRouter},
	}
	for _, ex := range exchanges {
		if err := store.Record(ctx, ex); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	loaded, err := store.Load(ctx, store.SessionID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ServerURL != "http://localhost:8000" {
		t.Errorf("unexpected server url: %s", loaded.ServerURL)
	}
	if len(loaded.Exchanges) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(loaded.Exchanges))
	}
	if loaded.Exchanges[0].Source != answer.SourceKnowledgeBase || loaded.Exchanges[1].Question != "hello" {
		t.Errorf("unexpected exchanges: %+v", loaded.Exchanges)
	}
	if loaded.Exchanges[0].Timestamp.IsZero() {
		t.Error("timestamp should be filled in")
	}
}

func TestStore_SkipsErrorAnswers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Record(ctx, session.Exchange{
		Question: "anything",
		Answer:   "Sorry, there was an error connecting to the server.",
		Source:   answer.SourceError,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	loaded, err := store.Load(ctx, store.SessionID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Exchanges) != 0 {
		t.Errorf("error answers must not be recorded, got %d", len(loaded.Exchanges))
	}
}

func TestStore_LoadUnknownSession(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Load(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestOpen_ReadOnlyReplaysEarlierSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transcript.db")

	sess := session.New("http://localhost:8000")
	writer, err := Open(ctx, path, sess, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := writer.Record(ctx, session.Exchange{Question: "hello", Answer: "Hello!", Source: answer.SourceOpenRouter}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	writer.Close()

	reader, err := Open(ctx, path, nil, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reader.Close()

	if reader.SessionID() != "" {
		t.Errorf("read-only store has no session, got %q", reader.SessionID())
	}
	if err := reader.Record(ctx, session.Exchange{Question: "q", Answer: "a"}); err == nil {
		t.Error("expected read-only store to reject writes")
	}

	loaded, err := reader.Load(ctx, sess.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Exchanges) != 1 || loaded.Exchanges[0].Answer != "Hello!" {
		t.Errorf("unexpected exchanges: %+v", loaded.Exchanges)
	}
}

func TestOpen_ReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.db")

	store, err := Open(context.Background(), path, nil, nil)
	if err == nil {
		store.Close()
		t.Fatal("expected error opening a missing transcript read-only")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("read-only open must not create %s (stat err: %v)", path, statErr)
	}
}
