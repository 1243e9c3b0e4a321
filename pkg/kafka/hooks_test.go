package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookChain_ThreadsContextAndReversesAfter(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return WithTraceID(ctx, name), km, append(data, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))

	ctx, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	require.NoError(t, err)
	chain.AfterHandle(ctx, "t", kafka.Message{}, data, nil)

	assert.Equal(t, "xab", string(data))
	assert.Equal(t, "b", TraceID(ctx))
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

func TestHookChain_PanicBecomesHookError(t *testing.T) {
	var notified error
	chain := NewHookChain(
		HookFuncs{Err: func(_ context.Context, _ string, _ kafka.Message, _ []byte, err error) { notified = err }},
		HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("bad hook")
		}},
	)

	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var herr *HookError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "ERR_PANIC", herr.Code)
	assert.Equal(t, err, notified)

	assert.NotPanics(t, func() {
		NewHookChain(HookFuncs{After: func(context.Context, string, kafka.Message, []byte, error) { panic("x") }}).
			AfterHandle(context.Background(), "t", kafka.Message{}, nil, nil)
	})
}

func TestExtractTraceID(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	assert.Equal(t, "abc", ExtractTraceID(msg))
	assert.Equal(t, "", ExtractTraceID(kafka.Message{}))
}

func TestEncode(t *testing.T) {
	b, err := Encode(map[string]int{"patients": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"patients":3}`, string(b))

	b, err = Encode("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))
}
