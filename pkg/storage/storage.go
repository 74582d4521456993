package storage

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded media under a single root directory.
// Filenames are randomly generated to avoid collisions:
//
//	profile_images/user_<user id>/<hex>.<ext>
//	product_images/<product id>/<uuid>.<ext>
type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Storage{root: root}, nil
}

// Root returns the media root directory
func (s *Storage) Root() string {
	return s.root
}

// SaveProfileImage stores an uploaded avatar and returns its relative path
func (s *Storage) SaveProfileImage(userID uuid.UUID, file *multipart.FileHeader) (string, error) {
	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext(file.Filename)
	rel := filepath.Join("profile_images", "user_"+userID.String(), name)
	if err := s.save(rel, file); err != nil {
		return "", err
	}
	return rel, nil
}

// SaveProductImage stores an uploaded listing image and returns its relative path
func (s *Storage) SaveProductImage(productID uuid.UUID, file *multipart.FileHeader) (string, error) {
	rel := filepath.Join("product_images", productID.String(), uuid.New().String()+ext(file.Filename))
	if err := s.save(rel, file); err != nil {
		return "", err
	}
	return rel, nil
}

// Remove deletes a stored file. Missing files are not an error: the
// record referencing the path may outlive the file.
func (s *Storage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Storage) save(rel string, file *multipart.FileHeader) error {
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(abs)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func ext(filename string) string {
	e := strings.ToLower(filepath.Ext(filename))
	if e == "" {
		e = ".bin"
	}
	return e
}
