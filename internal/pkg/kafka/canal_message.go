package kafka

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据
	Old []map[string]interface{} `json:"old"`
}

// ParseCanalMessage 解析 canal 消息，DDL 与空数据返回 (nil, nil)
func ParseCanalMessage(msg *sarama.ConsumerMessage) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal canal message at %s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	if canalMsg.IsDDL || len(canalMsg.Data) == 0 {
		return nil, nil
	}
	return &canalMsg, nil
}

// StrToString canal 的列值均为字符串或 null
func StrToString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// StrToUint64 无法解析时返回 0
func StrToUint64(v interface{}) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(StrToString(v)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
