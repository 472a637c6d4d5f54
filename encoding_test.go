package unextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNameDecoder(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		wantErr  bool
	}{
		{
			name:     "utf8",
			encoding: "utf8",
		},
		{
			name:     "cp932",
			encoding: "cp932",
		},
		{
			name:     "unsupported encoding",
			encoding: "latin1",
			wantErr:  true,
		},
		{
			name:     "empty encoding",
			encoding: "",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewNameDecoder(tt.encoding)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedEncoding)
				assert.Nil(t, dec)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, dec)
		})
	}
}

func TestNameDecoder_Decode(t *testing.T) {
	sjis := []byte{0x93, 0xfa, 0x96, 0x7b} // 日本 in shift-jis

	t.Run("declared utf8 wins over cp932", func(t *testing.T) {
		dec := mustDecoder(t, EncodingCP932)

		got, err := dec.Decode([]byte("résumé.txt"), true)
		require.NoError(t, err)
		assert.Equal(t, "résumé.txt", got)
	})

	t.Run("declared utf8 with invalid bytes is fatal", func(t *testing.T) {
		dec := mustDecoder(t, EncodingCP932)

		_, err := dec.Decode(sjis, true)
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("cp932 decodes shift-jis", func(t *testing.T) {
		dec := mustDecoder(t, EncodingCP932)

		got, err := dec.Decode(sjis, false)
		require.NoError(t, err)
		assert.Equal(t, "日本", got)
	})

	t.Run("cp932 replaces undecodable bytes", func(t *testing.T) {
		dec := mustDecoder(t, EncodingCP932)

		got, err := dec.Decode([]byte{0x82, 0xa0, 0xff, 0xff}, false)
		require.NoError(t, err)
		assert.NotEmpty(t, got)
	})

	t.Run("utf8 passes valid names through", func(t *testing.T) {
		dec := mustDecoder(t, EncodingUTF8)

		got, err := dec.Decode([]byte("dir/file.txt"), false)
		require.NoError(t, err)
		assert.Equal(t, "dir/file.txt", got)
	})

	t.Run("strict utf8 rejects invalid names", func(t *testing.T) {
		dec := mustDecoder(t, EncodingUTF8)

		_, err := dec.Decode(sjis, false)
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("legacy fallback retries as shift-jis", func(t *testing.T) {
		dec := mustDecoder(t, EncodingUTF8, func(d *NameDecoder) { d.LegacyFallback = true })

		got, err := dec.Decode(sjis, false)
		require.NoError(t, err)
		assert.Equal(t, "日本", got)
	})
}
