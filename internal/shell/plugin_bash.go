package shell

// BashPlugin appends every interactive command to the recall history log
// with a UTC timestamp.
const BashPlugin = `# recall shell plugin (generated, do not edit)
# Source this file from your ~/.bashrc:
#   source ~/.config/recall/recall.plugin.bash

_recall_log_file="${RECALL_SHELL_LOG:-$HOME/.recall_shell_history.log}"

_recall_preexec() {
  [[ -n "$COMP_LINE" ]] && return
  [[ "$BASH_COMMAND" == "$PROMPT_COMMAND" ]] && return
  local cmd="$BASH_COMMAND"
  [[ -z "${cmd// }" ]] && return
  printf '%s %s\n' "$(date -u +%Y-%m-%dT%H:%M:%SZ)" "$cmd" >> "$_recall_log_file"
}

trap '_recall_preexec' DEBUG
`
