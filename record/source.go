// Package record 以单次遍历的方式从 CSV 文件读取参会者记录。
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotFound 表示 CSV 文件不存在。返回的错误同时满足 errors.Is(err, fs.ErrNotExist)。
var ErrNotFound = errors.New("file not found")

// Field 是记录中的一个字段。
type Field struct {
	Name  string
	Value string
}

// Record 是一行数据：按表头顺序排列的字段名到取值的映射。创建后只读。
type Record struct {
	Row    int // 数据行序号，从 1 开始（不含表头）
	fields []Field
	index  map[string]int
}

// Get 返回字段取值以及该字段是否存在。
func (r Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

// Value 返回字段取值，缺失时返回空串。
func (r Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Fields 按表头顺序返回字段副本。
func (r Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Source 逐行读取 CSV 记录；只能遍历一次，重新读取需要再次 Open。
type Source struct {
	path   string
	file   *os.File
	reader *csv.Reader
	header []string
	row    int
}

// Open 打开 CSV 文件并读取表头。文件以 UTF-8 解码，开头的 BOM 会被去掉。
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &notFoundError{path: path, err: err}
		}
		return nil, fmt.Errorf("无法打开 CSV 文件 %s: %w", path, err)
	}

	decoded := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true // 允许未加引号字段中出现裸引号，例如 Robert "Bob" Smith
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		file.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV 文件 %s 缺少表头", path)
		}
		return nil, fmt.Errorf("读取 CSV 表头失败: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &Source{path: path, file: file, reader: reader, header: header}, nil
}

// Header 返回表头副本。
func (s *Source) Header() []string {
	return append([]string(nil), s.header...)
}

// Next 返回下一条记录；读完后返回 io.EOF。
// 列数不足的行缺少对应字段，多出的单元格被忽略。
func (s *Source) Next() (Record, error) {
	cells, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("读取 CSV 第 %d 行失败: %w", s.row+2, err)
	}
	s.row++

	n := min(len(cells), len(s.header))
	rec := Record{Row: s.row, fields: make([]Field, 0, n), index: make(map[string]int, n)}
	for i := 0; i < n; i++ {
		name := s.header[i]
		if _, dup := rec.index[name]; dup {
			continue
		}
		rec.index[name] = len(rec.fields)
		rec.fields = append(rec.fields, Field{Name: name, Value: cells[i]})
	}
	return rec, nil
}

// Close 关闭底层文件。
func (s *Source) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ReadAll 读取剩余全部记录。
func (s *Source) ReadAll() ([]Record, error) {
	var out []Record
	for {
		rec, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

type notFoundError struct {
	path string
	err  error
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("CSV 文件 %s: %s", e.path, ErrNotFound)
}

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *notFoundError) Unwrap() error { return e.err }
