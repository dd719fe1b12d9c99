package bot

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const avatarMaxBytes = 15 * 1024 * 1024

var avatarClient = &http.Client{Timeout: 10 * time.Second}

// fetchAvatar downloads a user's avatar image. Every failure degrades to nil
// so a proposal message simply goes out without the picture.
func (b *Bot) fetchAvatar(userID string) []byte {
	url := fmt.Sprintf("https://q.qlogo.cn/headimg_dl?dst_uin=%s&spec=640", userID)

	resp, err := avatarClient.Get(url)
	if err != nil {
		log.Printf("Avatar download failed for %s: %v", userID, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, avatarMaxBytes+1))
	if err != nil {
		log.Printf("Avatar read failed for %s: %v", userID, err)
		return nil
	}
	if len(data) > avatarMaxBytes {
		return nil
	}

	return data
}
