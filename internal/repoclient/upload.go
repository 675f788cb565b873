// upload.go — multipart-загрузка файла в файловый sub-resource релиза.
package repoclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// ProgressFunc — callback прогресса загрузки (всего прочитано байт).
// Алиас, а не именованный тип: сигнатура UploadFile должна совпадать
// с узкими интерфейсами пакетов-потребителей.
type ProgressFunc = func(written int64)

// progressReader считает прочитанные байты и дёргает callback.
type progressReader struct {
	r       io.Reader
	written int64
	fn      ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		if p.fn != nil {
			p.fn(p.written)
		}
	}
	return n, err
}

// UploadFile загружает один файл в path (POST multipart, поле "file").
// onProgress может быть nil. Успешный ответ не отражает результат
// распаковки архива на сервере — авторитетный список файлов доступен
// только последующим GET listing.
func (c *Client) UploadFile(ctx context.Context, path, filename string, r io.Reader, onProgress ProgressFunc) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// Пишем multipart-тело в pipe из отдельной горутины:
	// файл стримится без буферизации целиком в память.
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("создание multipart part: %w", err))
			return
		}
		if _, err := io.Copy(part, &progressReader{r: r, fn: onProgress}); err != nil {
			pw.CloseWithError(fmt.Errorf("чтение файла %q: %w", filename, err))
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(path), pr)
	if err != nil {
		return fmt.Errorf("создание запроса загрузки: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("загрузка %q: %w", filename, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Загрузка файла завершена",
		slog.String("filename", filename),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	return nil
}
