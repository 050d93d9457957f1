// Package drive maps cases to folders and files in Google Drive. Every call
// takes a short-lived bearer token supplied by the caller; nothing here
// holds credentials or a long-lived session with the provider.
package drive

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

type Service struct {
	logger       *logrus.Logger
	rootFolderID string
}

func New(logger *logrus.Logger, rootFolderID string) *Service {
	return &Service{
		logger:       logger,
		rootFolderID: rootFolderID,
	}
}

type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size"`
}

// client builds a fresh drive service around the per-request token.
func (s *Service) client(ctx context.Context, accessToken string) (*gdrive.Service, error) {
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to build drive client: %w", err)
	}
	return svc, nil
}

// CreateCaseFolder creates the per-case folder, "<case code> - <name>".
func (s *Service) CreateCaseFolder(ctx context.Context, accessToken, caseCode, beneficiaryName string) (*Folder, error) {
	return s.createFolder(ctx, accessToken, caseFolderName(caseCode, beneficiaryName))
}

// createFolder places the folder under the configured root when that root is
// reachable with the caller's credentials; otherwise it falls back to the
// drive's top level rather than failing.
func (s *Service) createFolder(ctx context.Context, accessToken, name string) (*Folder, error) {

	svc, err := s.client(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var parents []string
	if s.rootFolderID != "" {
		if _, err := svc.Files.Get(s.rootFolderID).Fields("id").Context(ctx).Do(); err != nil {
			s.logger.WithError(err).WithField("folder_id", s.rootFolderID).
				Warn("root folder not accessible, creating at drive top level")
		} else {
			parents = []string{s.rootFolderID}
		}
	}

	created, err := svc.Files.Create(&gdrive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  parents,
	}).Fields("id", "name", "webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create drive folder: %w", err)
	}

	return &Folder{
		ID:   created.Id,
		Name: created.Name,
		URL:  created.WebViewLink,
	}, nil
}

// UploadFile streams content into the folder, grants public read on the new
// file, and returns its stable metadata.
func (s *Service) UploadFile(ctx context.Context, accessToken, folderID, name, mimeType string, content io.Reader) (*File, error) {

	svc, err := s.client(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	created, err := svc.Files.Create(&gdrive.File{
		Name:    name,
		Parents: []string{folderID},
	}).Media(content, googleapi.ContentType(mimeType)).
		Fields("id", "name", "webViewLink", "mimeType", "size").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to drive: %w", err)
	}

	_, err = svc.Permissions.Create(created.Id, &gdrive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to grant read permission on %s: %w", created.Id, err)
	}

	return &File{
		ID:          created.Id,
		Name:        created.Name,
		URL:         created.WebViewLink,
		DownloadURL: downloadURL(created.Id),
		MimeType:    created.MimeType,
		Size:        created.Size,
	}, nil
}

// DeleteFile is best-effort from the caller's perspective; a failure here is
// logged by the caller and the local metadata row is removed anyway.
func (s *Service) DeleteFile(ctx context.Context, accessToken, fileID string) error {

	svc, err := s.client(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete drive file %s: %w", fileID, err)
	}

	return nil
}

func caseFolderName(caseCode, beneficiaryName string) string {
	return fmt.Sprintf("%s - %s", caseCode, beneficiaryName)
}

func downloadURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", fileID)
}
