package utils

import (
	"crypto/rand"
	"math/big"
)

var passwordLetters = []rune("abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%^&*")

// GenerateRandomPassword 生成新账户的初始密码，去掉了容易看错的 0/O、1/l/I
func GenerateRandomPassword(length int) string {
	count := big.NewInt(int64(len(passwordLetters)))

	password := make([]rune, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, count)
		if err != nil {
			panic(err)
		}
		password[i] = passwordLetters[n.Int64()]
	}
	return string(password)
}
