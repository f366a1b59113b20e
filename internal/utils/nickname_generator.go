package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultNickname is used when a random nickname cannot be generated
const DefaultNickname = "사용자"

var adjectives = []string{
	"부지런한", "깔끔한", "다정한", "든든한", "상냥한",
	"꼼꼼한", "성실한", "씩씩한", "반짝이는", "따뜻한",
}

var nouns = []string{
	"집사", "이웃", "도우미", "살림꾼", "해결사",
	"고양이", "강아지", "다람쥐", "참새", "토끼",
}

// GenerateNickname creates a random nickname such as "꼼꼼한이웃0427"
func GenerateNickname() (string, error) {
	adjIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(adjectives))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random adjective: %w", err)
	}

	nounIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nouns))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random noun: %w", err)
	}

	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	return fmt.Sprintf("%s%s%04d", adjectives[adjIdx.Int64()], nouns[nounIdx.Int64()], suffix.Int64()), nil
}

// NicknameOrDefault returns a generated nickname, or DefaultNickname on failure
func NicknameOrDefault() string {
	name, err := GenerateNickname()
	if err != nil {
		return DefaultNickname
	}
	return name
}
