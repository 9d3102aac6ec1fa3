package weather

// Icon categories.
const (
	IconClear        = "clear"
	IconPartlyCloudy = "partly-cloudy"
	IconCloudy       = "cloudy"
	IconFog          = "fog"
	IconDrizzle      = "drizzle"
	IconRain         = "rain"
	IconSnow         = "snow"
	IconThunderstorm = "thunderstorm"
	IconUnknown      = "unknown"
)

const unknownConditions = "Unknown"

var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// iconRanges is ordered by upper bound; a code takes the first range it fits under.
var iconRanges = []struct {
	max  int
	icon string
}{
	{0, IconClear},
	{2, IconPartlyCloudy},
	{3, IconCloudy},
	{48, IconFog},
	{57, IconDrizzle},
	{67, IconRain},
	{77, IconSnow},
	{82, IconRain},
	{86, IconSnow},
	{99, IconThunderstorm},
}

// Describe maps a WMO weather code to text. Unlisted codes are "Unknown".
func Describe(code int) string {
	if d, ok := wmoDescriptions[code]; ok {
		return d
	}
	return unknownConditions
}

// Icon maps a WMO weather code to an icon category by range.
func Icon(code int) string {
	if code < 0 {
		return IconUnknown
	}
	for _, r := range iconRanges {
		if code <= r.max {
			return r.icon
		}
	}
	return IconUnknown
}
