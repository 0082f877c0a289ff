// Package ingest reads the two externally produced streams a recording
// needs before fusion: ASR utterances and diarization turns. Both are
// JSON arrays; engine output files are not always UTF-8, so a charset
// hint can be supplied and the stream is transcoded before decoding.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodedReader wraps r so it yields UTF-8. An empty or UTF-8 charset
// passes through untouched apart from BOM stripping.
func decodedReader(r io.Reader, charset string) (io.Reader, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))

	var decoder transform.Transformer
	switch charset {
	case "", "utf-8", "utf8", "us-ascii":
		return stripBOM(r), nil
	case "iso-8859-1", "latin1", "iso_8859-1":
		decoder = charmap.ISO8859_1.NewDecoder()
	case "iso-8859-2", "latin2":
		decoder = charmap.ISO8859_2.NewDecoder()
	case "iso-8859-15", "latin9":
		decoder = charmap.ISO8859_15.NewDecoder()
	case "windows-1252", "cp1252":
		decoder = charmap.Windows1252.NewDecoder()
	case "windows-1251", "cp1251":
		decoder = charmap.Windows1251.NewDecoder()
	case "koi8-r":
		decoder = charmap.KOI8R.NewDecoder()
	case "gb2312", "gbk", "gb18030":
		decoder = simplifiedchinese.GBK.NewDecoder()
	case "big5":
		decoder = traditionalchinese.Big5.NewDecoder()
	case "euc-jp":
		decoder = japanese.EUCJP.NewDecoder()
	case "iso-2022-jp":
		decoder = japanese.ISO2022JP.NewDecoder()
	case "shift_jis", "shift-jis", "sjis":
		decoder = japanese.ShiftJIS.NewDecoder()
	case "euc-kr":
		decoder = korean.EUCKR.NewDecoder()
	default:
		return nil, fmt.Errorf("unknown charset %q: %w", charset, njerrors.ErrValidation)
	}

	return transform.NewReader(r, decoder), nil
}

// stripBOM removes a leading UTF-8 byte order mark if present.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		// Short stream; replay what was read.
		return bytes.NewReader(buf[:n])
	}
	if bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf), r)
}
