package moderation

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDictionary_StoreAndLoad(t *testing.T) {
	req := require.New(t)
	db := openDB(t)

	// Given words with blanks and duplicates
	req.NoError(StoreDictionary(db, []string{"snake", "", "badger", "snake"}))

	// Then each word is stored once, in key order
	words, err := LoadDictionary(db)
	req.NoError(err)
	req.Equal([]string{"badger", "snake"}, words)
}

func Test_Moderation_Startup(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	wordCount := 100_000

	// --- Phase 1: SEEDING ---
	startSeed := time.Now()
	words := make([]string, wordCount)
	for i := range words {
		words[i] = fmt.Sprintf("word_%d", i)
	}
	req.NoError(StoreDictionary(db, words))
	fmt.Printf("✅ Seeding %d words: %v\n", wordCount, time.Since(startSeed))

	// --- Phase 2: LOADING ---
	startLoad := time.Now()
	loaded, err := LoadDictionary(db)
	req.NoError(err)
	req.Len(loaded, wordCount)
	fmt.Printf("✅ Loading from Badger: %v\n", time.Since(startLoad))

	// --- Phase 3: BUILDING AHO-CORASICK ---
	startBuild := time.Now()
	_, err = NewModerator(loaded, replacementChar, log)
	req.NoError(err)

	fmt.Printf("✅ Building AC Automaton: %v\n", time.Since(startBuild))
	fmt.Printf("\n🚀 Total startup time for moderation: %v\n", time.Since(startLoad))
}
