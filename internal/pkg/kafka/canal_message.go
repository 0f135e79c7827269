package kafka

// canal 变更类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage canal 推送到 Kafka 的 binlog 变更
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`

	// 变更后的行，列值均为字符串
	Data []map[string]any `json:"data"`
	Old  []map[string]any `json:"old"`
}

// column 取列的字符串值，缺失或非字符串时返回空串
func (m *CanalMessage) column(row int, name string) string {
	if row >= len(m.Data) {
		return ""
	}
	v, _ := m.Data[row][name].(string)
	return v
}
