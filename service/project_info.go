package service

import (
	"errors"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// errTagFound stops tag iteration early
var errTagFound = errors.New("tag found")

// GitInfo is what the repository enclosing a project directory tells about HEAD
type GitInfo struct {
	URL        string
	CommitHash string
	CommitDate string
	Tag        string
}

// ProbeGit opens the repository containing dir, searching parent directories.
// It returns false when dir is not inside a git work tree.
func ProbeGit(dir string) (GitInfo, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return GitInfo{}, false
	}

	var info GitInfo
	if remote, err := repo.Remote(git.DefaultRemoteName); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.URL = urls[0]
		}
	}

	head, err := repo.Head()
	if err != nil {
		// Fresh repository without commits
		return info, true
	}
	info.CommitHash = head.Hash().String()

	if commit, err := repo.CommitObject(head.Hash()); err == nil {
		info.CommitDate = commit.Committer.When.UTC().Format(time.RFC3339)
	}

	info.Tag = tagAt(repo, head.Hash())
	return info, true
}

// tagAt returns the name of a tag pointing at hash, lightweight or annotated
func tagAt(repo *git.Repository, hash plumbing.Hash) string {
	tags, err := repo.Tags()
	if err != nil {
		return ""
	}
	defer tags.Close()

	var name string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if annotated, err := repo.TagObject(target); err == nil {
			target = annotated.Target
		}
		if target == hash {
			name = ref.Name().Short()
			return errTagFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errTagFound) {
		return ""
	}
	return name
}

// buildProjectInfo merges explicit metadata, git facts and project statistics.
// Explicit values always win over probed ones.
func buildProjectInfo(meta domain.ProjectMetadata, fallbackDir string, stats model.ProjectStats, logger *zap.Logger) domain.ProjectInfo {
	dir := meta.Dir
	if dir == "" {
		dir = fallbackDir
	}

	if dir != "" && (meta.URL == "" || meta.CommitHash == "" || meta.CommitDate == "" || meta.Tag == "") {
		if info, ok := ProbeGit(dir); ok {
			logger.Debug("git metadata probed",
				zap.String("dir", dir),
				zap.String("commit", info.CommitHash),
				zap.String("tag", info.Tag))
			meta.URL = firstNonEmpty(meta.URL, info.URL)
			meta.CommitHash = firstNonEmpty(meta.CommitHash, info.CommitHash)
			meta.CommitDate = firstNonEmpty(meta.CommitDate, info.CommitDate)
			meta.Tag = firstNonEmpty(meta.Tag, info.Tag)
		}
	}

	return domain.ProjectInfo{
		ProjectURL:                  domain.StringPtr(meta.URL),
		ProjectName:                 domain.StringPtr(meta.Name),
		ProjectVersion:              domain.StringPtr(meta.Version),
		ProjectCommitHash:           domain.StringPtr(meta.CommitHash),
		ProjectTag:                  domain.StringPtr(meta.Tag),
		ProjectCommitDate:           domain.StringPtr(meta.CommitDate),
		Additional:                  map[string]interface{}{},
		NumberOfFiles:               stats.Files,
		NumberOfClassesOrInterfaces: stats.Classes,
		NumberOfMethods:             stats.Methods,
		NumberOfDataFields:          stats.Fields,
		NumberOfMethodParameters:    stats.Parameters,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
