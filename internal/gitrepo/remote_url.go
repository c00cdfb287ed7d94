package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant          = "ssh://"
	httpsProtocolPrefixConstant        = "https://"
	gitUserPrefixConstant              = "git@"
	sshUserDelimiterConstant           = "@"
	sshPathDelimiterConstant           = ":"
	pathSeparatorConstant              = "/"
	gitSuffixConstant                  = ".git"
	remoteURLErrorTemplateConstant     = "%s: %s"
	invalidRemoteURLMessageConstant    = "invalid remote url"
	unsupportedProtocolMessageConstant = "unsupported remote protocol"
	requiredValueMessageConstant       = "value must be provided"
	sshRemoteURLTemplateConstant       = "git@%s:%s/%s.git"
	httpsRemoteURLTemplateConstant     = "https://%s/%s/%s.git"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured
// representation, accepting ssh://, scp-like, and https:// forms.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	switch {
	case len(trimmedRemote) == 0:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseSSHRemote(remote, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		return parseSSHRemote(remote, trimmedRemote)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHTTPSRemote(remote, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

func parseSSHRemote(originalInput string, remote string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPath := remote[userSplitIndex+1:]

	host := ""
	repositoryPath := ""
	if pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant); pathSplitIndex != -1 {
		host = hostAndPath[:pathSplitIndex]
		repositoryPath = hostAndPath[pathSplitIndex+1:]
	} else if slashIndex := strings.Index(hostAndPath, pathSeparatorConstant); slashIndex != -1 {
		host = hostAndPath[:slashIndex]
		repositoryPath = hostAndPath[slashIndex+1:]
	} else {
		return RemoteURL{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, splitError := splitOwnerAndRepository(originalInput, repositoryPath)
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPSRemote(originalInput string, remote string) (RemoteURL, error) {
	firstSlashIndex := strings.Index(remote, pathSeparatorConstant)
	if firstSlashIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	owner, repository, splitError := splitOwnerAndRepository(originalInput, remote[firstSlashIndex+1:])
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: remote[:firstSlashIndex], Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(originalInput string, repositoryPath string) (string, string, error) {
	pathSegments := strings.Split(strings.TrimSuffix(repositoryPath, pathSeparatorConstant), pathSeparatorConstant)
	if len(pathSegments) != 2 {
		return "", "", RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	repository := strings.TrimSuffix(pathSegments[1], gitSuffixConstant)
	if len(pathSegments[0]) == 0 || len(repository) == 0 {
		return "", "", RemoteURLParseError{Input: originalInput, Message: invalidRemoteURLMessageConstant}
	}
	return pathSegments[0], repository, nil
}

// FormatRemoteURL creates a textual remote URL from a structured
// representation.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	for _, requiredValue := range []string{remote.Host, remote.Owner, remote.Repository} {
		if len(strings.TrimSpace(requiredValue)) == 0 {
			return "", RemoteURLParseError{Input: requiredValue, Message: requiredValueMessageConstant}
		}
	}
	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshRemoteURLTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsRemoteURLTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	default:
		return "", RemoteURLParseError{Input: string(remote.Protocol), Message: unsupportedProtocolMessageConstant}
	}
}
