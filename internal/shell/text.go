package shell

// Version is reported by ver and sysinfo.
const Version = "1.0.0"

// Entry is one item of the fake C:\WINTER drive.
type Entry struct {
	Name string
	Dir  bool
	Size int64
}

// DriveListing is the static content of C:\WINTER, shared by dir and the
// files window.
var DriveListing = []Entry{
	{Name: "DOCUMENTS", Dir: true},
	{Name: "SYSTEM", Dir: true},
	{Name: "PROGRAMS", Dir: true},
	{Name: "README.TXT", Size: 1024},
	{Name: "AUTOEXEC.BAT", Size: 256},
	{Name: "WINTER.MID", Size: 4096},
}

var aboutText = []string{
	"Winter Retro OS - A nostalgic journey to the 90s",
	"",
	"Features:",
	"  - Advanced snow particle system",
	"  - Draggable windows",
	"  - Interactive terminal",
	"  - Retro aesthetics",
}

var creditsText = []string{
	"=== WINTER RETRO OS CREDITS ===",
	"",
	"Developed with:",
	"  Go",
	"  Bubble Tea and Lip Gloss",
	"",
	"Special thanks to:",
	"  The 90s for inspiration",
	"  Snow for being beautiful",
	"  You for visiting!",
}

var treeText = []string{
	`C:\WINTER`,
	"│",
	"├── DOCUMENTS",
	"│   ├── LETTERS",
	"│   └── REPORTS",
	"│",
	"├── SYSTEM",
	"│   ├── CONFIG.SYS",
	"│   └── DRIVERS",
	"│",
	"└── PROGRAMS",
	"    ├── GAMES",
	"    └── TOOLS",
}

const winterArtWidth = 36

var winterArt = []string{
	"",
	"     ❄  WINTER RETRO OS  ❄",
	"",
	"        *    .  *       *",
	"     *       *     *  .",
	"   .   *   ❄   *     *",
	"        *    .     *    .",
	"   *  .    *    .    *",
	"",
	"   Stay cozy, stay retro!  ☃",
	"",
}
