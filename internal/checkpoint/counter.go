package checkpoint

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrNoCheckpoint: ни файла, ни записанной в памяти страницы
var ErrNoCheckpoint = errors.New("no checkpoint recorded")

// Counter хранит номер начатой страницы: в памяти и построчно в файле.
// Значима только последняя строка файла.
type Counter struct {
	path    string
	last    int
	hasLast bool
}

// NewCounter создаёт счётчик; пустой path означает хранение только в памяти
func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

func (c *Counter) Path() string {
	return c.path
}

// Record запоминает страницу и дописывает её строкой в файл
func (c *Counter) Record(page int) error {
	c.last = page
	c.hasLast = true

	if c.path == "" {
		return nil
	}

	file, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	if _, err := fmt.Fprintf(file, "%d\n", page); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return file.Close()
}

// Last возвращает последнюю записанную страницу.
// Если файл пропал или испорчен, используется значение из памяти.
func (c *Counter) Last() (int, error) {
	if c.path != "" {
		page, ok, err := readLast(c.path)
		if err == nil && ok {
			return page, nil
		}
	}
	if c.hasLast {
		return c.last, nil
	}
	return 0, ErrNoCheckpoint
}

// Exists сообщает, есть ли файл счётчика на диске
func (c *Counter) Exists() bool {
	if c.path == "" {
		return false
	}
	_, err := os.Stat(c.path)
	return err == nil
}

// Remove удаляет файл; значение в памяти сохраняется
func (c *Counter) Remove() error {
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	return nil
}

// Load читает страницу из оставшегося от прошлого запуска файла
func Load(path string) (page int, ok bool, err error) {
	if path == "" {
		return 0, false, nil
	}
	page, ok, err = readLast(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	return page, ok, err
}

func readLast(path string) (int, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = file.Close() }()

	var lastLine string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lastLine = line
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, false, fmt.Errorf("failed to read checkpoint file: %w", err)
	}
	if lastLine == "" {
		return 0, false, nil
	}

	page, err := strconv.Atoi(lastLine)
	if err != nil {
		return 0, false, fmt.Errorf("malformed checkpoint %q: %w", lastLine, err)
	}
	return page, true, nil
}
