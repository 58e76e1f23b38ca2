package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// dotEnvFiles 우선순위 순 (.env.local 이 .env 보다 우선)
var dotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv 존재하는 .env 파일을 환경변수로 로드하고 로드한 파일 목록을 돌려준다.
// 이미 설정된 OS 환경변수는 덮어쓰지 않는다. 파일이 있는데 파싱에 실패하면 에러.
func LoadDotEnv() ([]string, error) {
	return loadDotEnvFiles(dotEnvFiles...)
}

func loadDotEnvFiles(candidates ...string) ([]string, error) {
	var loaded []string
	for _, f := range candidates {
		_, err := os.Stat(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("env 파일 확인 실패 (%s): %w", f, err)
		}
		// godotenv.Load 는 먼저 로드된 값을 덮어쓰지 않으므로 앞 파일이 이긴다
		if err := godotenv.Load(f); err != nil {
			return loaded, fmt.Errorf("env 파일 파싱 실패 (%s): %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}
