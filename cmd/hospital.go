package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Daskott/instantdoc/colors"
	"github.com/Daskott/instantdoc/server/hospital"
	"github.com/Daskott/instantdoc/server/places"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const HOSPITAL_LOOKUP_TIMEOUT = 30 * time.Second

var (
	latArg float64
	lngArg float64

	// newHospitalFinder is swapped out in tests
	newHospitalFinder = func(ctx context.Context, apiKey string) (hospital.Finder, error) {
		return places.NewClient(ctx, apiKey)
	}
)

func init() {
	rootCmd.AddCommand(createHospitalCmd())
}

func createHospitalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospital",
		Short: "Find the nearest hospital to a location",
		Long: `Find the nearest hospital to a location using the Google Places API.
For example:

instantdoc hospital --lat 23.8103 --lng 90.4125`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHospitalCmd(cmd)
		},
	}

	cmd.Flags().Float64Var(&latArg, "lat", 0, "latitude of the location")
	cmd.Flags().Float64Var(&lngArg, "lng", 0, "longitude of the location")
	cmd.Flags().String("api-key", "", "Google Maps API key (default is $GOOGLE_MAPS_API_KEY)")

	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lng")

	return cmd
}

func runHospitalCmd(cmd *cobra.Command) error {
	// Written so NaN fails the range checks
	if !(latArg >= -90 && latArg <= 90) {
		return formattedError("inavlid arg \"%v\" for \"--lat\", should be between -90 and 90", latArg)
	}

	if !(lngArg >= -180 && lngArg <= 180) {
		return formattedError("inavlid arg \"%v\" for \"--lng\", should be between -180 and 180", lngArg)
	}

	apiKey, err := hospitalAPIKey(cmd)
	if err != nil {
		return err
	}

	if apiKey == "" {
		return formattedError("must set \"--api-key\" or the env var 'GOOGLE_MAPS_API_KEY'")
	}

	ctx, cancel := context.WithTimeout(context.Background(), HOSPITAL_LOOKUP_TIMEOUT)
	defer cancel()

	finder, err := newHospitalFinder(ctx, apiKey)
	if err != nil {
		return err
	}

	result, err := hospital.FindNearest(ctx, finder, hospital.Coordinate{Latitude: latArg, Longitude: lngArg})
	if err != nil {
		return err
	}

	if !result.Found {
		fmt.Fprintln(cmd.OutOrStdout(), "No hospitals found nearby")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%v\n%v\n%.2f km away (%v hospitals nearby)\n",
		colors.Yellow(result.Nearest.Name), result.Nearest.Vicinity, *result.DistanceKm, len(result.Hospitals))

	return nil
}

// hospitalAPIKey resolves the key when the command runs, after the env file is loaded.
// The --api-key flag wins over GOOGLE_MAPS_API_KEY.
func hospitalAPIKey(cmd *cobra.Command) (string, error) {
	v := viper.New()

	if err := v.BindPFlag("apiKey", cmd.Flags().Lookup("api-key")); err != nil {
		return "", err
	}

	if err := v.BindEnv("apiKey", "GOOGLE_MAPS_API_KEY"); err != nil {
		return "", err
	}

	return v.GetString("apiKey"), nil
}
