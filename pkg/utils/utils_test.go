package utils

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateUserName covers length bounds and the character set.
func TestValidateUserName(t *testing.T) {
	valid := []string{"abc", "player_one", "GM_Alice", "x1y2z3", strings.Repeat("a", 20)}
	for _, name := range valid {
		assert.True(t, ValidateUserName(name), "expected %q to be valid", name)
	}

	invalid := []string{"", "ab", strings.Repeat("a", 21), "with space", "dash-ed", "dot.ted", "émile"}
	for _, name := range invalid {
		assert.False(t, ValidateUserName(name), "expected %q to be invalid", name)
	}
}

// TestValidateEmail covers the usual shapes.
func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "alice@club.test", "a.b+tag@sub.domain.org"}
	for _, email := range valid {
		assert.True(t, ValidateEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{"", "plain", "@no.local", "user@", "user@host", "user@@host.test"}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), "expected %q to be invalid", email)
	}
}

// TestValidatePassword checks the minimum length rule.
func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("seven77"))
	assert.True(t, ValidatePassword("eight888"))
}

// TestPasswordHashing round-trips a password and rejects a wrong one.
func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, CheckPassword(hash, "correct-horse"))
	assert.False(t, CheckPassword(hash, "wrong-horse"))
}

// TestGenerateInviteCode_Properties checks that every generated code has
// the fixed length and stays within the unambiguous alphabet.
func TestGenerateInviteCode_Properties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("codes have the configured length", prop.ForAll(
		func(_ int) bool {
			return len(GenerateInviteCode()) == InviteCodeLength
		},
		gen.Int(),
	))

	properties.Property("codes only use the unambiguous alphabet", prop.ForAll(
		func(_ int) bool {
			for _, r := range GenerateInviteCode() {
				if !strings.ContainsRune(inviteAlphabet, r) {
					return false
				}
			}
			return true
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

// TestGenerateInviteCode_NoEasyCollisions samples a batch of codes; with a
// 31-character alphabet and 10 positions a repeat means the generator is
// broken.
func TestGenerateInviteCode_NoEasyCollisions(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		code := GenerateInviteCode()
		require.False(t, seen[code], "generated duplicate code %s", code)
		seen[code] = true
	}
}

// TestWorkerPool runs every submitted job exactly once.
func TestWorkerPool(t *testing.T) {
	pool := NewWorkerPool(4, 16)
	pool.Start()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int64(100), counter.Load())
}

// TestWorkerPool_RecoversFromPanic keeps workers alive after a panicking
// job.
func TestWorkerPool_RecoversFromPanic(t *testing.T) {
	pool := NewWorkerPool(1, 4)
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done
}
