package mcpserver

// WindowFormatContract describes the canonical window document format that
// LLM consumers should follow when creating windows.
const WindowFormatContract = `# Laguz Window Format Contract

Every window stored in Laguz is a single Markdown file named ` + "`" + `<uuid>.md` + "`" + `
with YAML frontmatter followed by the body text.

## Structure

` + "```" + `markdown
---
uuid: 3f2a9c1e-...                  # REQUIRED – identity of the window, matches the filename
title: Human-readable title         # REQUIRED – shown in lists and search
tags:                               # OPTIONAL – YAML list; used for filtering and grouping
  - tag-one
  - tag-two
starred: false                      # OPTIONAL – pin flag
archived: false                     # OPTIONAL – archived windows are hidden by default
mode: task                          # OPTIONAL – "task" or "note" (default note)
task_states: [true, false, false]   # task mode only – one entry per body line
due: 2026-04-01T00:00:00            # OPTIONAL – naive local timestamp
due_time: "14:30"                   # OPTIONAL – wall-clock time for datetime precision
due_timezone: Europe/Berlin         # OPTIONAL – IANA zone name
due_precision: date                 # OPTIONAL – "date" or "datetime"
created: 2026-03-01T10:00:00        # set by the server
updated: 2026-03-01T10:00:00        # set by the server
---

Body text, one item per line.
In task mode every non-empty line is a task; task_states holds its done flag.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `uuid` + "`" + ` and ` + "`" + `title` + "`" + ` are required.** The uuid is assigned by the
   server on creation; never invent one.
3. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `, ` + "`" + `errands` + "`" + `).
4. **Timestamps are naive local time** in the form ` + "`" + `YYYY-MM-DDTHH:MM:SS` + "`" + ` —
   no timezone offset suffix. Date-only due values normalize to midnight.
5. **Task states** must have exactly one boolean per body line; the server
   realigns them when the text changes.
6. **Encoding** is UTF-8 with a trailing newline.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the window body.
- Assets are stored in the shared ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference in windows using the absolute path: ` + "`" + `![description](/attachments/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./attachments/...` + "`" + ` — always use ` + "`" + `/attachments/filename` + "`" + `.

## Example

` + "```" + `markdown
---
uuid: 9c41d8a0-5b7e-4f1c-8d2a-0e6f3b9a7c44
title: Grocery run
tags:
  - errands
mode: task
task_states: [true, false]
due: 2026-04-01T00:00:00
due_precision: date
created: 2026-03-01T10:00:00
updated: 2026-03-02T09:15:00
---

Buy milk
Return bottles
` + "```" + `
`
