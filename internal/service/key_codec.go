package service

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ghost-toolkit/internal/constants"
)

// keyGroupSizes 每组随机字节数，编码后为 8-4-4-4-12 位十六进制
var keyGroupSizes = [...]int{4, 2, 2, 2, 6}

// KeyCodec 密钥生成与解析
type KeyCodec struct {
	rand io.Reader
}

// SubscriptionKeyParts 订阅兑换串 "<uid>--<hwid>--<code>"
type SubscriptionKeyParts struct {
	UID  uint
	HWID string
	Code string
}

// SpinKeyParts 点数兑换串 "<uid>-<code>"
type SpinKeyParts struct {
	UID  uint
	Code string
}

// NewKeyCodec 创建使用 crypto/rand 的密钥编解码器
func NewKeyCodec() *KeyCodec {
	return &KeyCodec{rand: crand.Reader}
}

// NewKeyCodecWithReader 使用指定随机源，仅用于测试
func NewKeyCodecWithReader(r io.Reader) *KeyCodec {
	return &KeyCodec{rand: r}
}

// Generate 生成 GHOST-XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX 格式密钥
func (c *KeyCodec) Generate() (string, error) {
	total := 0
	for _, size := range keyGroupSizes {
		total += size
	}
	buf := make([]byte, total)
	if _, err := io.ReadFull(c.reader(), buf); err != nil {
		return "", fmt.Errorf("read random bytes failed: %w", err)
	}

	groups := make([]string, 0, len(keyGroupSizes))
	offset := 0
	for _, size := range keyGroupSizes {
		groups = append(groups, strings.ToUpper(hex.EncodeToString(buf[offset:offset+size])))
		offset += size
	}
	return constants.KeyCodePrefix + strings.Join(groups, "-"), nil
}

func (c *KeyCodec) reader() io.Reader {
	if c == nil || c.rand == nil {
		return crand.Reader
	}
	return c.rand
}

// ParseSubscriptionKey 解析订阅兑换串，三段均不可为空
func ParseSubscriptionKey(presented string) (SubscriptionKeyParts, error) {
	segments := strings.Split(strings.TrimSpace(presented), constants.SubscriptionKeyDelimiter)
	if len(segments) != 3 {
		return SubscriptionKeyParts{}, ErrMalformedKey
	}
	uid, err := ParseUID(segments[0])
	if err != nil {
		return SubscriptionKeyParts{}, err
	}
	hwid := strings.TrimSpace(segments[1])
	code := strings.TrimSpace(segments[2])
	if hwid == "" || code == "" {
		return SubscriptionKeyParts{}, ErrMalformedKey
	}
	return SubscriptionKeyParts{UID: uid, HWID: hwid, Code: code}, nil
}

// ParseSpinKey 解析点数兑换串，只在第一个分隔符处切分，密钥自身的 "-" 保留
func ParseSpinKey(presented string) (SpinKeyParts, error) {
	head, code, ok := strings.Cut(strings.TrimSpace(presented), constants.SpinKeyDelimiter)
	if !ok {
		return SpinKeyParts{}, ErrMalformedKey
	}
	uid, err := ParseUID(head)
	if err != nil {
		return SpinKeyParts{}, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return SpinKeyParts{}, ErrMalformedKey
	}
	return SpinKeyParts{UID: uid, Code: code}, nil
}

// ParseUID 解析正整数账户 ID
func ParseUID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMalformedKey
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, ErrMalformedKey
	}
	return uint(value), nil
}

// ParseSpinCount 解析点数密钥的等级（购买的抽奖次数）
func ParseSpinCount(class string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(class), 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrMalformedKey
	}
	return value, nil
}
