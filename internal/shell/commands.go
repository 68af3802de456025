package shell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

func registerBuiltins(s *Shell) {
	s.Register("help", cmdHelp)
	s.Register("clear", cmdClear)
	s.Register("cls", cmdClear)
	s.Register("dir", cmdDir)
	s.Register("ls", cmdDir)
	s.Register("echo", cmdEcho)
	s.Register("date", cmdDate)
	s.Register("time", cmdTime)
	s.Register("ver", cmdVer)
	s.Register("snow", cmdSnow)
	s.Register("wind", cmdWind)
	s.Register("about", cmdAbout)
	s.Register("credits", cmdCredits)
	s.Register("tree", cmdTree)
	s.Register("sysinfo", cmdSysinfo)
	s.Register("matrix", cmdMatrix)
	s.Register("winter", cmdWinter)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cmdHelp(s *Shell, _ []string) {
	o := s.opts
	s.Println(
		"Available commands:",
		"",
		"  help       - Display this help message",
		"  clear/cls  - Clear the terminal screen",
		"  dir/ls     - List directory contents",
		"  echo       - Display a message",
		"  date       - Display current date",
		"  time       - Display current time",
		"  ver        - Display system version",
		fmt.Sprintf("  snow       - Control snow intensity (%d-%d)", o.SnowMin, o.SnowMax),
		fmt.Sprintf("  wind       - Control wind speed (%s to %s)", formatFloat(o.WindMin), formatFloat(o.WindMax)),
		"  about      - Display about information",
		"  credits    - Show credits",
		"  tree       - Display directory tree",
		"  sysinfo    - Display system information",
		"  matrix     - Enter the matrix...",
		"  winter     - Display winter ASCII art",
	)
}

func cmdClear(s *Shell, _ []string) {
	s.Clear()
}

func cmdDir(s *Shell, _ []string) {
	s.Println(" Directory of "+s.opts.Cwd, "")
	dirs, files := 0, 0
	for _, e := range DriveListing {
		if e.Dir {
			dirs++
			s.Println(" [DIR]   " + e.Name)
			continue
		}
		files++
		s.Println(fmt.Sprintf("         %-12s%13s bytes", e.Name, humanize.Comma(e.Size)))
	}
	s.Println("", fmt.Sprintf("         %d directories, %d files", dirs, files))
}

func cmdEcho(s *Shell, args []string) {
	s.Println(strings.Join(args, " "))
}

func cmdDate(s *Shell, _ []string) {
	s.Println("Current date: " + s.opts.Now().Format("1/2/2006"))
}

func cmdTime(s *Shell, _ []string) {
	s.Println("Current time: " + s.opts.Now().Format("3:04:05 PM"))
}

func cmdVer(s *Shell, _ []string) {
	s.Println(
		"Winter Retro OS [Version "+Version+"]",
		"(c) 1995-2025 Winter Corporation. All rights reserved.",
	)
}

// cmdSnow validates strictly: the whole argument must be an integer in range.
func cmdSnow(s *Shell, args []string) {
	o := s.opts
	if len(args) == 0 {
		s.Println("Usage: snow <amount>", fmt.Sprintf("Set snow particle count (%d-%d)", o.SnowMin, o.SnowMax))
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < o.SnowMin || n > o.SnowMax {
		s.Println(fmt.Sprintf("Error: Amount must be between %d and %d", o.SnowMin, o.SnowMax))
		return
	}
	if s.field == nil {
		return
	}
	s.field.SetCount(n)
	s.Println(fmt.Sprintf("Snow intensity set to %d particles", n))
}

func cmdWind(s *Shell, args []string) {
	o := s.opts
	lo, hi := formatFloat(o.WindMin), formatFloat(o.WindMax)
	if len(args) == 0 {
		s.Println("Usage: wind <speed>", fmt.Sprintf("Set wind speed (%s to %s)", lo, hi))
		return
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(v) || v < o.WindMin || v > o.WindMax {
		s.Println(fmt.Sprintf("Error: Speed must be between %s and %s", lo, hi))
		return
	}
	if s.field == nil {
		return
	}
	s.field.SetWindTarget(v)
	s.Println("Wind speed set to " + formatFloat(v))
}

func cmdAbout(s *Shell, _ []string) {
	s.Println(aboutText...)
}

func cmdCredits(s *Shell, _ []string) {
	s.Println(creditsText...)
}

func cmdTree(s *Shell, _ []string) {
	s.Println(treeText...)
}

func cmdSysinfo(s *Shell, _ []string) {
	info := s.opts.Info()
	orUnknown := func(v string) string {
		if v == "" {
			return "Unknown"
		}
		return v
	}
	resolution := "Unknown"
	if info.Cols > 0 && info.Rows > 0 {
		resolution = fmt.Sprintf("%dx%d", info.Cols, info.Rows)
	}
	started := "Unknown"
	if !info.Started.IsZero() {
		started = humanize.RelTime(info.Started, s.opts.Now(), "ago", "from now")
	}
	s.Println(
		"=== SYSTEM INFORMATION ===",
		"",
		"OS Name:           Winter Retro OS",
		"Version:           "+Version,
		"System Type:       Terminal-based OS",
		fmt.Sprintf("Processor:         %d cores", info.Cores),
		"Terminal:          "+orUnknown(info.Terminal),
		"Screen Resolution: "+resolution,
		"Language:          "+orUnknown(info.Language),
		"Session Started:   "+started,
	)
}

func cmdMatrix(s *Shell, _ []string) {
	s.Println("Wake up, Neo...")
	s.Later(1*time.Second, "The Matrix has you...")
	s.Later(2*time.Second, "Follow the white rabbit.")
	s.Later(3*time.Second, "", "Knock, knock, Neo.")
}

func cmdWinter(s *Shell, _ []string) {
	lines := make([]string, 0, len(winterArt)+4)
	lines = append(lines, "", "    ╔"+strings.Repeat("═", winterArtWidth)+"╗")
	for _, l := range winterArt {
		lines = append(lines, "    ║"+runewidth.FillRight(runewidth.Truncate(l, winterArtWidth, ""), winterArtWidth)+"║")
	}
	lines = append(lines, "    ╚"+strings.Repeat("═", winterArtWidth)+"╝", "")
	s.Println(lines...)
}
