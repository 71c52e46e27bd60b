package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// formValues はJSONまたはフォームのリクエストボディを文字列のマップとして読み取る。
// application/jsonの場合はトップレベルのオブジェクトを読み、数値や真偽値は文字列に変換する。
// それ以外はapplication/x-www-form-urlencodedとして扱う。
// 解析に失敗した場合は空のマップを返し、必須項目の検証に任せる。
func formValues(w http.ResponseWriter, r *http.Request) map[string]string {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		values, err := decodeJSONObject(r)
		if err != nil {
			slog.Debug("failed to decode JSON body", slog.String("error", err.Error()))
			return map[string]string{}
		}
		return values
	}

	if err := r.ParseForm(); err != nil {
		slog.Debug("failed to parse form body", slog.String("error", err.Error()))
		return map[string]string{}
	}
	values := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		values[key] = r.PostForm.Get(key)
	}
	return values
}

// decodeJSONObject はJSONオブジェクトの各値を文字列に変換して返す。
func decodeJSONObject(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case string:
			values[key] = val
		case json.Number:
			values[key] = val.String()
		case bool:
			values[key] = strconv.FormatBool(val)
		case nil:
			// nullは未指定と同じ扱い
		default:
			// オブジェクトや配列は値として扱わない
		}
	}
	return values, nil
}
