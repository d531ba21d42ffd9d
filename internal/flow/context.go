package flow

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/monorel/monorel/internal/errors"
)

// EventType is the kind of CI trigger.
type EventType string

const (
	EventRelease     EventType = "release"
	EventPullRequest EventType = "pull_request"
	EventPush        EventType = "push"
	EventOther       EventType = "other"
)

const (
	DefaultMainBranch = "main"
	DefaultDevBranch  = "dev"
)

// GitHub Actions environment variables read by ContextFromEnv.
const (
	EnvEventName  = "GITHUB_EVENT_NAME"
	EnvEventPath  = "GITHUB_EVENT_PATH"
	EnvRefName    = "GITHUB_REF_NAME"
	EnvBaseRef    = "GITHUB_BASE_REF"
	EnvHeadRef    = "GITHUB_HEAD_REF"
	EnvSHA        = "GITHUB_SHA"
	EnvRunNumber  = "GITHUB_RUN_NUMBER"
	EnvRunAttempt = "GITHUB_RUN_ATTEMPT"
)

// Context describes the event a run was triggered by.
type Context struct {
	EventType         EventType `json:"eventType"`
	RefName           string    `json:"refName"`
	BaseRef           string    `json:"baseRef"`
	HeadRef           string    `json:"headRef"`
	CommitSHA         string    `json:"commitSha"`
	BaseSHA           string    `json:"baseSha,omitempty"`
	ReleaseTag        string    `json:"releaseTag"`
	MainBranch        string    `json:"mainBranch"`
	DevBranch         string    `json:"devBranch"`
	RunNumber         int       `json:"runNumber,omitempty"`
	RunAttempt        int       `json:"runAttempt,omitempty"`
	ReleasePrerelease bool      `json:"releasePrerelease"`
}

// ParseEventType maps a host event name to an EventType. Unknown names map to EventOther.
func ParseEventType(name string) EventType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "release":
		return EventRelease
	case "pull_request", "pull_request_target":
		return EventPullRequest
	case "push":
		return EventPush
	}

	return EventOther
}

// eventPayload is the subset of the webhook payload the host stores at GITHUB_EVENT_PATH.
type eventPayload struct {
	Release *struct {
		TagName    string `json:"tag_name"`
		Prerelease bool   `json:"prerelease"`
	} `json:"release"`
	PullRequest *struct {
		Base struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"base"`
		Head struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
}

// ContextFromEnv builds a Context from the GitHub Actions environment and event payload.
// Missing variables leave the corresponding fields empty; an unreadable payload is an error.
func ContextFromEnv(env map[string]string) (Context, error) {
	ctx := Context{
		EventType:  ParseEventType(env[EnvEventName]),
		RefName:    env[EnvRefName],
		BaseRef:    env[EnvBaseRef],
		HeadRef:    env[EnvHeadRef],
		CommitSHA:  env[EnvSHA],
		MainBranch: DefaultMainBranch,
		DevBranch:  DefaultDevBranch,
		RunNumber:  atoi(env[EnvRunNumber]),
		RunAttempt: atoi(env[EnvRunAttempt]),
	}

	eventPath := env[EnvEventPath]
	if eventPath == "" {
		return ctx, nil
	}

	data, err := os.ReadFile(eventPath)
	if err != nil {
		return ctx, errors.WithStackTraceAndPrefix(err, "reading event payload")
	}

	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ctx, errors.WithStackTraceAndPrefix(err, "parsing event payload %s", eventPath)
	}

	if payload.Release != nil {
		ctx.ReleaseTag = payload.Release.TagName
		ctx.ReleasePrerelease = payload.Release.Prerelease
	}

	if pr := payload.PullRequest; pr != nil {
		ctx.BaseSHA = pr.Base.SHA

		if ctx.BaseRef == "" {
			ctx.BaseRef = pr.Base.Ref
		}

		if ctx.HeadRef == "" {
			ctx.HeadRef = pr.Head.Ref
		}

		// The host checks out a merge commit for pull requests; the head commit identifies the change.
		if pr.Head.SHA != "" {
			ctx.CommitSHA = pr.Head.SHA
		}
	}

	return ctx, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return n
}
