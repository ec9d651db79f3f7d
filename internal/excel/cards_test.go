package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCards_ReadBack(t *testing.T) {
	cards := []Card{
		{Front: "apple", Back: "りんご"},
		{Front: "dog", Back: "犬"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCards(&buf, cards))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{ExportSheetName}, f.GetSheetList())
	header, err := f.GetCellValue(ExportSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "front", header)

	// 書き出したファイルはそのまま取り込める
	result, err := ReadCards(bytes.NewReader(buf.Bytes()), "export.xlsx", 0)
	require.NoError(t, err)
	assert.Equal(t, cards, result.Cards)
	assert.Zero(t, result.Skipped)
}

func TestReadCards_CSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		maxRows     int
		wantCards   []Card
		wantSkipped int
		wantErr     error
	}{
		{
			name:      "正常系: BOM付きの見出し行を読み飛ばす",
			input:     "\ufefffront,back\nhello,こんにちは\n",
			wantCards: []Card{{Front: "hello", Back: "こんにちは"}},
		},
		{
			name:        "正常系: 空行は無視し、片面だけの行はスキップ数に数える",
			input:       "cat,猫\n,\nonly-front,\n  bird , 鳥 \n",
			wantCards:   []Card{{Front: "cat", Back: "猫"}, {Front: "bird", Back: "鳥"}},
			wantSkipped: 1,
		},
		{
			name:    "異常系: 行数上限を超える",
			input:   "a,1\nb,2\nc,3\n",
			maxRows: 2,
			wantErr: ErrTooManyRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ReadCards(strings.NewReader(tt.input), "cards.CSV", tt.maxRows)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCards, result.Cards)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
		})
	}
}

func TestReadCards_Errors(t *testing.T) {
	t.Run("異常系: 対応していない拡張子", func(t *testing.T) {
		_, err := ReadCards(strings.NewReader("x"), "cards.txt", 0)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("異常系: 長すぎるセルは行番号付きで返す", func(t *testing.T) {
		input := "ok,fine\n" + strings.Repeat("あ", MaxCellLength+1) + ",back\n"
		_, err := ReadCards(strings.NewReader(input), "cards.csv", 0)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 2, rowErr.Row)
	})

	t.Run("異常系: 壊れた xlsx", func(t *testing.T) {
		_, err := ReadCards(strings.NewReader("not a zip"), "cards.xlsx", 0)
		assert.Error(t, err)
	})
}
