package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength — длина одноразового кода в цифрах
const CodeLength = 6

// Numeric генерирует одноразовый код: равномерно случайное число
// из диапазона 100000–999999. Уникальность не гарантируется —
// при совпадении значений действующим считается более свежий код.
func Numeric() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
