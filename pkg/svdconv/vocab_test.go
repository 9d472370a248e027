package svdconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

func TestVocabularies(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  any
		got   func(string) (any, error)
	}{
		{"access read-only", "READ_ONLY", svd.ReadOnly, wrap(accessType)},
		{"access read-write-once", "READ_WRITE_ONCE", svd.ReadWriteOnce, wrap(accessType)},
		{"protection undefined", "UNDEF", svd.ProtectionAny, wrap(protectionType)},
		{"protection privileged", "PRIVILEGED", svd.Privileged, wrap(protectionType)},
		{"block usage buffer", "BUFFER", svd.BlockBuffer, wrap(blockUsage)},
		{"modify undefined", "undefined", svd.WriteModify, wrap(modifiedWriteValues)},
		{"modify zero to toggle", "zeroToToggle", svd.WriteZeroToToggle, wrap(modifiedWriteValues)},
		{"read action external", "MODIFEXT", svd.ReadModifyExternal, wrap(readAction)},
		{"enum usage undefined", "UNDEF", svd.EnumReadWrite, wrap(enumUsage)},
		{"data type pointer", "uint16_t *", svd.Uint16Ptr, wrap(dataType)},
		{"data type upper case", "INT8_T", svd.Int8, wrap(dataType)},
		{"data type absent", "", svd.DataTypeNone, wrap(dataType)},
		{"element cluster", "cluster", svd.KindCluster, wrap(elementType)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func wrap[T any](f func(string) (T, error)) func(string) (any, error) {
	return func(s string) (any, error) { return f(s) }
}

func TestUnmappedTokens(t *testing.T) {
	tests := []struct {
		vocabulary string
		token      string
		translate  func(string) (any, error)
	}{
		{"access", "UNDEF", wrap(accessType)},
		{"access", "END", wrap(accessType)},
		{"access", "read-only", wrap(accessType)},
		{"protection", "secure", wrap(protectionType)},
		{"address block usage", "", wrap(blockUsage)},
		{"modified write values", "ONETOCLEAR", wrap(modifiedWriteValues)},
		{"read action", "clear", wrap(readAction)},
		{"enumerated value usage", "read-write", wrap(enumUsage)},
		{"data type", "float", wrap(dataType)},
		{"element type", "Register", wrap(elementType)},
	}

	for _, tt := range tests {
		t.Run(tt.vocabulary+"/"+tt.token, func(t *testing.T) {
			_, err := tt.translate(tt.token)
			var tokenErr *UnmappedTokenError
			require.ErrorAs(t, err, &tokenErr)
			assert.Equal(t, tt.vocabulary, tokenErr.Vocabulary)
			assert.Equal(t, tt.token, tokenErr.Token)
			assert.Contains(t, err.Error(), tt.vocabulary)
		})
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Summary
		wantOK bool
	}{
		{
			name:   "clean run",
			output: "SVDConv\n\nFound 0 Error(s) and 0 Warning(s)\n",
			wantOK: true,
		},
		{
			name:   "errors and warnings",
			output: "*** ERROR M361: ...\nFound 12 Error(s) and 345 Warning(s)\n",
			want:   Summary{Errors: 12, Warnings: 345},
			wantOK: true,
		},
		{
			name:   "no summary",
			output: "Segmentation fault\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSummary([]byte(tt.output))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckSummary(t *testing.T) {
	assert.NoError(t, checkSummary([]byte("no summary at all")))
	assert.NoError(t, checkSummary([]byte("Found 0 Error(s) and 9 Warning(s)")))
	assert.ErrorIs(t, checkSummary([]byte("Found 1 Error(s) and 0 Warning(s)")), ErrToolErrors)
}
