package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectForWorkspace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "default", want: "tplvars.default.state"},
		{in: "My Landing Page", want: "tplvars.my-landing-page.state"},
		{in: "a.b", want: "tplvars.a-b.state"},
		{in: "", want: "tplvars.default.state"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectForWorkspace(tt.in))
		})
	}
}

func TestEmbeddedStream(t *testing.T) {
	emb, err := Start(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, emb.Close()) }()

	ctx := context.Background()
	stream, err := SetupStream(ctx, emb.JS)
	require.NoError(t, err)

	subject := SubjectForWorkspace("demo")
	for _, body := range []string{"one", "two"} {
		_, err := emb.JS.Publish(ctx, subject, []byte(body))
		require.NoError(t, err)
	}

	msg, err := stream.GetLastMsgForSubject(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, "two", string(msg.Data))

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)

	// Running setup again keeps the stream
	_, err = SetupStream(ctx, emb.JS)
	require.NoError(t, err)
}
