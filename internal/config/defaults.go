package config

// DefaultConfigYAML is written by `taskosaur-ai init`.
const DefaultConfigYAML = `# Taskosaur AI assistant configuration
#
# Values not specified here use built-in defaults. Every key can also be set
# through the environment, e.g. TASKOSAUR_SERVER_PORT=9000.

log:
  level: info
  # auto | text | json
  format: auto

server:
  host: 127.0.0.1
  port: 8089
  cors_origins:
    - http://localhost:3000
  # Sent to OpenRouter as HTTP-Referer
  app_url: http://localhost:3000
  request_timeout: 60s

database:
  path: .taskosaur/taskosaur.db

assistant:
  default_model: deepseek/deepseek-chat-v3-0324:free
  default_api_url: https://openrouter.ai/api/v1
  app_title: Taskosaur AI Assistant
  session_ttl: 1h
  reaper_interval: 1h
  # Optional YAML command catalog replacing the built-in one
  commands_file: ""
  # Words that never count as workspace or project names. Reloaded on change.
  heuristics:
    denylist: []
    deny_prefixes: []
  rate_limit:
    max_tokens: 10
    refill_rate: 1
`
