package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/duartefn/solo/internal/encoding"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_ValidUTF8Passthrough(t *testing.T) {
	input := "Data;Descrição;Montante\n30-01-2026;Papelaria São João;-19,90\n"
	assert.Equal(t, input, decode(t, []byte(input)))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	content := "Data;Descrição;Montante\n"
	input := append([]byte{0xEF, 0xBB, 0xBF}, content...)

	assert.Equal(t, content, decode(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	content := "Data;Descrição;Montante\n"

	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).
		NewEncoder().Bytes([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, content, decode(t, encoded))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Descrição" with ç = 0xE7 and ã = 0xE3, as the bank exports it.
	input := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	assert.Equal(t, "Descrição;Montante\n", decode(t, input))
}
