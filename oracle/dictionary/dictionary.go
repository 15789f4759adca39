package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Dictionary maps a word to its ordered association list.
type Dictionary map[string][]string

// Parse decodes a dictionary from YAML. JSON documents are valid YAML and
// parse the same way.
func Parse(r io.Reader) (Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDictionary
	}

	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(d) == 0 {
		return nil, ErrEmptyDictionary
	}
	for word := range d {
		if word == "" {
			return nil, fmt.Errorf("%w: empty headword", ErrMalformed)
		}
	}
	return d, nil
}

// Load reads a dictionary file.
func Load(path string) (Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

// Sample returns the built-in dictionary of ten common words.
func Sample() Dictionary {
	return Dictionary{
		"犬":  {"猫", "動物", "ペット", "散歩", "飼い主", "しっぽ"},
		"猫":  {"犬", "動物", "ネコ", "魚", "毛玉", "ニャー"},
		"料理": {"食事", "調理", "レシピ", "食材", "キッチン", "味"},
		"音楽": {"歌", "楽器", "メロディー", "リズム", "コンサート", "アーティスト"},
		"本":  {"読書", "小説", "図書館", "作家", "物語", "ページ"},
		"花":  {"植物", "桜", "バラ", "香り", "庭", "美しい"},
		"車":  {"自動車", "運転", "道路", "エンジン", "タイヤ", "交通"},
		"海":  {"水", "波", "魚", "砂浜", "青", "塩"},
		"山":  {"自然", "登山", "森", "頂上", "緑", "空気"},
		"雨":  {"水", "天気", "傘", "雲", "湿気", "音"},
	}
}
