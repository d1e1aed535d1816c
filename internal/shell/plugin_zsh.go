package shell

// ZshPlugin installs a preexec hook that appends every command to the
// recall history log with a UTC timestamp.
const ZshPlugin = `# recall shell plugin (generated, do not edit)
# Source this file from your ~/.zshrc:
#   source ~/.config/recall/recall.plugin.zsh

_recall_log_file="${RECALL_SHELL_LOG:-$HOME/.recall_shell_history.log}"

_recall_preexec() {
  local cmd="${1//$'\n'/ }"
  [[ -z "${cmd// }" ]] && return
  printf '%s %s\n' "$(date -u +%Y-%m-%dT%H:%M:%SZ)" "$cmd" >> "$_recall_log_file"
}

autoload -Uz add-zsh-hook
add-zsh-hook preexec _recall_preexec
`
