package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solatis/weavereplace/internal/types"
)

func TestCallUnknownPassesThrough(t *testing.T) {
	reg := New(nil)

	assert.Equal(t, "x", reg.Call("nonexistent", "x", types.Options{}))
	assert.Equal(t, []any{1.0, 2.0}, reg.Call("nonexistent", []any{1.0, 2.0}, nil))
	assert.Nil(t, reg.Call("nonexistent", nil, nil))
}

func TestRegisterAndCall(t *testing.T) {
	reg := New(nil)
	reg.Register("upper", func(v any, _ types.Options) any {
		s, _ := v.(string)
		return strings.ToUpper(s)
	})

	require.True(t, reg.Has("upper"))
	assert.False(t, reg.Has("lower"))
	assert.Equal(t, "HI", reg.Call("upper", "hi", nil))
}

func TestCallPassesNonNilOptions(t *testing.T) {
	reg := New(nil)
	var got types.Options
	reg.Register("capture", func(v any, opts types.Options) any {
		got = opts
		return v
	})

	reg.Call("capture", "x", nil)
	assert.NotNil(t, got)

	opts := types.Options{"n": 2.0}
	reg.Call("capture", "x", opts)
	assert.Equal(t, 2.0, got["n"])
	assert.Equal(t, types.Options{"n": 2.0}, opts, "caller options must not be modified")
}

func TestCallRecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := New(zap.New(core))
	reg.Register("boom", func(any, types.Options) any { panic("boom") })

	assert.Equal(t, "in", reg.Call("boom", "in", nil))

	out, err := reg.Invoke("boom", "in", nil)
	assert.ErrorIs(t, err, types.ErrFunctionPanic)
	assert.Equal(t, "in", out)

	entries := logs.FilterMessage("function panicked, passing value through").FilterField(zap.String("name", "boom"))
	assert.Equal(t, 2, entries.Len())
}

func TestCallLimitsRecursion(t *testing.T) {
	reg := New(nil)
	depth := 0
	reg.Register("self", func(v any, opts types.Options) any {
		depth++
		return reg.Call("self", v, opts)
	})

	assert.Equal(t, "x", reg.Call("self", "x", nil))
	assert.Equal(t, MaxCallDepth, depth)

	out, err := reg.Invoke("self", "x", types.Options{})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestCallLimitsFanOut(t *testing.T) {
	reg := New(nil)
	calls := 0
	reg.Register("fan", func(v any, opts types.Options) any {
		calls++
		for i := 0; i < 4; i++ {
			reg.Call("fan", v, opts)
		}
		return v
	})

	assert.Equal(t, "x", reg.Call("fan", "x", nil))
	assert.Equal(t, MaxCalls, calls)

	// A new top-level call gets a fresh budget.
	calls = 0
	reg.Call("fan", "x", nil)
	assert.Equal(t, MaxCalls, calls)
}

func TestInheritCarriesFrame(t *testing.T) {
	reg := New(nil)
	depth := 0
	reg.Register("fresh", func(v any, opts types.Options) any {
		depth++
		return reg.Call("fresh", v, Inherit(opts, types.Options{"k": "v"}))
	})

	reg.Call("fresh", "x", nil)
	assert.Equal(t, MaxCallDepth, depth)

	child := Inherit(types.Options{}, types.Options{"k": "v"})
	assert.Equal(t, types.Options{"k": "v"}, child)
}

func TestRegisterReplaces(t *testing.T) {
	reg := New(nil)
	reg.Register("f", func(any, types.Options) any { return "first" })
	reg.Register("f", func(any, types.Options) any { return "second" })

	assert.Equal(t, "second", reg.Call("f", nil, nil))
}

func TestNamesSorted(t *testing.T) {
	reg := New(nil)
	reg.RegisterAll(map[string]Func{
		"trim":  func(v any, _ types.Options) any { return v },
		"upper": func(v any, _ types.Options) any { return v },
		"count": func(v any, _ types.Options) any { return v },
	})

	assert.Equal(t, []string{"count", "trim", "upper"}, reg.Names())
	assert.Len(t, reg.All(), 3)
}

func TestAllReturnsCopy(t *testing.T) {
	reg := New(nil)
	reg.Register("f", func(v any, _ types.Options) any { return v })

	all := reg.All()
	delete(all, "f")

	assert.True(t, reg.Has("f"))
}

func TestConcurrentRegisterAndCall(t *testing.T) {
	reg := New(nil)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register("id", func(v any, _ types.Options) any { return v })
		}()
		go func() {
			defer wg.Done()
			reg.Call("id", "v", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, "v", reg.Call("id", "v", nil))
}
