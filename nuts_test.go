package nuts

import (
	"testing"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/errs"
	"github.com/stretchr/testify/require"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	password := []byte("correct horse battery staple")

	a, err := Create(back, password)
	require.NoError(t, err)

	b, err := a.Append("greeting.txt")
	require.NoError(t, err)
	_, err = b.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, b.Finish())

	require.NoError(t, a.Close())

	a2, err := Open(back, password)
	require.NoError(t, err)

	e, err := a2.Lookup("greeting.txt")
	require.NoError(t, err)

	content, err := e.ReadContent()
	require.NoError(t, err)
	require.Equal(t, []byte("hello\n"), content)

	require.NoError(t, a2.Close())
}

func TestOpenWrongPassword(t *testing.T) {
	back := backend.NewMemoryBackend(512)

	a, err := Create(back, []byte("right"))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = Open(back, []byte("wrong"))
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}
