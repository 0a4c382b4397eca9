package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDebugJSON 将排版结果输出为 JSON，便于调试或对照渲染结果。
func WriteDebugJSON(badges []*Badge, path string) error {
	if len(badges) == 0 {
		badges = []*Badge{}
	}
	data, err := json.MarshalIndent(badges, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
