package backup

import (
	"bytes"
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveSink uploads exported snapshots into a backups folder on Google Drive.
type DriveSink struct {
	service   *drive.Service
	folderID  string
	shareWith string
}

type DriveSinkParams struct {
	FolderName string
	// optional reader account the uploaded files are shared with
	ShareWith string
}

func NewDriveSink(ctx context.Context, params DriveSinkParams, opts ...option.ClientOption) (*DriveSink, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	s := &DriveSink{
		service:   driveService,
		shareWith: params.ShareWith,
	}

	folderQuery := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, params.FolderName)
	folders, err := driveService.Files.List().
		Q(folderQuery).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	switch len(folders.Files) {
	case 0:
		log.Printf("backups folder %s not found, creating ...", params.FolderName)
		folderID, err := s.createFolder(ctx, params.FolderName)
		if err != nil {
			return nil, fmt.Errorf("failed to create backups folder: %w", err)
		}
		s.folderID = folderID
	case 1:
		s.folderID = folders.Files[0].Id
	default:
		s.folderID = folders.Files[0].Id
		log.Warnf("found %d backups folders named %s, using %s", len(folders.Files), params.FolderName, s.folderID)
	}

	log.Printf("drive backups folder: %s", s.folderID)
	return s, nil
}

func (s *DriveSink) FolderID() string {
	return s.folderID
}

func (s *DriveSink) createFolder(ctx context.Context, name string) (string, error) {
	folder, err := s.service.Files.
		Create(&drive.File{Name: name, MimeType: folderMimeType}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if err := s.share(ctx, folder.Id); err != nil {
		return folder.Id, err
	}
	return folder.Id, nil
}

// Upload stores data as a new JSON file and returns its drive id.
func (s *DriveSink) Upload(ctx context.Context, name string, data []byte) (string, error) {
	fileMeta := &drive.File{
		Name:     name,
		MimeType: "application/json",
		Parents:  []string{s.folderID},
	}

	file, err := s.service.Files.
		Create(fileMeta).
		Fields("id, parents").
		Media(bytes.NewReader(data)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to create backup file: %w", name, err)
	}

	if err := s.share(ctx, file.Id); err != nil {
		return file.Id, fmt.Errorf("%s: %w", name, err)
	}

	log.Printf("backup file %s saved: %s", name, file.Id)
	return file.Id, nil
}

func (s *DriveSink) share(ctx context.Context, fileID string) error {
	if s.shareWith == "" {
		return nil
	}
	permission, err := s.service.Permissions.
		Create(fileID, &drive.Permission{
			EmailAddress: s.shareWith,
			Type:         "user",
			Role:         "reader",
		}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}
	log.Debugf("permission %s created for %s", permission.Id, fileID)
	return nil
}
