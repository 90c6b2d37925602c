package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"genom-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_LocksAreReleasedAfterUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			editor := fmt.Sprintf("editor-%d", i)
			if _, err := f.editor.StartEditing(ctx, editor, 42, false); err != nil {
				t.Error(err)
				return
			}
			if _, err := f.editor.Change(ctx, editor, model.RankKind, nil); err != nil {
				t.Error(err)
			}
			if err := f.editor.Discard(ctx, editor); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, f.store.lockCount())
}

func TestSessionStore_LockSerialisesSameEditor(t *testing.T) {
	store := NewSessionStore(newFakeSessionRepo())

	unlock := store.lock(curator)
	acquired := make(chan struct{})
	go func() {
		release := store.lock(curator)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock while the first still held it")
	default:
	}
	other := store.lock("someone-else")
	other()

	unlock()
	<-acquired
	require.Eventually(t, func() bool { return store.lockCount() == 0 }, time.Second, time.Millisecond)
}
